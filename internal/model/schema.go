package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/wellstat/internal/dataset"
)

const caseSchemaURL = "schema://case.json"

// CaseSchema returns the JSON schema of a new-case record for this design.
// Categorical fields are restricted to the live domains.
func (d *Design) CaseSchema() map[string]any {
	number := func(desc string) map[string]any {
		return map[string]any{"type": "number", "description": desc}
	}
	enum := func(dom dataset.Domain, desc string) map[string]any {
		levels := dom.Levels()
		values := make([]any, len(levels))
		for i, l := range levels {
			values[i] = l
		}
		return map[string]any{"type": "string", "enum": values, "description": desc}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			dataset.FieldAge:          number("Age in years"),
			dataset.FieldGender:       enum(d.gender, "Gender, one of the levels seen in the survey"),
			dataset.FieldScreenTime:   number("Daily screen time in hours"),
			dataset.FieldSleepQuality: number("Sleep quality on a 1-10 scale"),
			dataset.FieldStressLevel:  number("Stress level on a 1-10 scale"),
			dataset.FieldDaysOffline:  number("Days without social media"),
			dataset.FieldExerciseFreq: number("Exercise sessions per week"),
			dataset.FieldPlatform:     enum(d.platform, "Primary social media platform"),
		},
		"required": []any{
			dataset.FieldAge,
			dataset.FieldGender,
			dataset.FieldScreenTime,
			dataset.FieldSleepQuality,
			dataset.FieldStressLevel,
			dataset.FieldDaysOffline,
			dataset.FieldExerciseFreq,
			dataset.FieldPlatform,
		},
		"additionalProperties": false,
	}
}

// compiledSchema compiles the case schema once per design.
func (d *Design) compiledSchema() (*jsonschema.Schema, error) {
	d.schemaOnce.Do(func() {
		// The compiler wants a parsed JSON value, not Go maps of typed slices.
		defBytes, err := json.Marshal(d.CaseSchema())
		if err != nil {
			d.schemaErr = fmt.Errorf("marshal case schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			d.schemaErr = fmt.Errorf("parse case schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(caseSchemaURL, def); err != nil {
			d.schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		d.schema, d.schemaErr = c.Compile(caseSchemaURL)
	})
	return d.schema, d.schemaErr
}

// DecodeCase validates raw JSON against the case schema and decodes it.
// The decoded case is also checked by Validate.
func (d *Design) DecodeCase(raw []byte) (Case, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Case{}, &InvalidCaseError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := d.compiledSchema()
	if err != nil {
		return Case{}, fmt.Errorf("compile case schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return Case{}, &InvalidCaseError{Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var c Case
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Case{}, &InvalidCaseError{Err: err}
	}
	if err := d.Validate(c); err != nil {
		return Case{}, err
	}
	return c, nil
}
