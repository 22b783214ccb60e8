package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

const sequenceTable = "global_sequence"

// sequence orders evaluation and prediction events on one timeline so a
// history listing can interleave both tables.
type sequence struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// openSequence seeds the counter row; the table comes from migrate.
func openSequence(ctx context.Context, drv *entsql.Driver) (*sequence, error) {
	seed := `INSERT OR IGNORE INTO ` + sequenceTable + ` (id, next_val) VALUES (1, 1)`
	if err := drv.Exec(ctx, seed, []any{}, nil); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequence{drv: drv}, nil
}

// Next returns the next sequence number. The increment happens in a single
// UPDATE ... RETURNING, so separate processes sharing the file never
// receive the same value.
func (s *sequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := &entsql.Rows{}
	query := `UPDATE ` + sequenceTable + ` SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`
	if err := s.drv.Query(ctx, query, []any{}, rows); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, fmt.Errorf("next sequence: %w", sql.ErrNoRows)
	}
	var seq int64
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("scan sequence: %w", err)
	}
	return seq, nil
}
