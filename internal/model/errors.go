package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownLevel indicates a categorical value outside the fitted domain.
	ErrUnknownLevel = errors.New("unknown categorical level")

	// ErrInvalidCase indicates a malformed new-case record.
	ErrInvalidCase = errors.New("invalid case")
)

// UnknownLevelError reports which field carried an out-of-domain value.
type UnknownLevelError struct {
	Field  string
	Value  string
	Levels []string
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("%s %q is not one of [%s]", e.Field, e.Value, strings.Join(e.Levels, ", "))
}

func (e *UnknownLevelError) Unwrap() error { return ErrUnknownLevel }

// InvalidCaseError wraps a schema or decoding failure of case input.
type InvalidCaseError struct {
	Err error
}

func (e *InvalidCaseError) Error() string {
	return fmt.Sprintf("invalid case: %v", e.Err)
}

func (e *InvalidCaseError) Unwrap() []error { return []error{ErrInvalidCase, e.Err} }
