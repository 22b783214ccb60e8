package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	evaluationTable = "evaluation_events"
	predictionTable = "prediction_events"
)

// eventColumns are shared by every event table.
const eventColumns = `
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence   INTEGER NOT NULL UNIQUE,
	session_id TEXT    NOT NULL,
	timestamp  INTEGER NOT NULL,
	source     TEXT    NOT NULL,
	threshold  REAL    NOT NULL`

var tables = []struct {
	name string
	ddl  string
}{
	{evaluationTable, `CREATE TABLE IF NOT EXISTS ` + evaluationTable + ` (` + eventColumns + `,
	tp          INTEGER NOT NULL,
	fp          INTEGER NOT NULL,
	fn          INTEGER NOT NULL,
	tn          INTEGER NOT NULL,
	accuracy    REAL    NOT NULL,
	sensitivity REAL,
	specificity REAL
)`},
	{predictionTable, `CREATE TABLE IF NOT EXISTS ` + predictionTable + ` (` + eventColumns + `,
	case_json   TEXT    NOT NULL,
	probability REAL    NOT NULL,
	class       INTEGER NOT NULL
)`},
	{sequenceTable, `CREATE TABLE IF NOT EXISTS ` + sequenceTable + ` (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	next_val INTEGER NOT NULL DEFAULT 1
)`},
}

// migrate creates the event and sequence tables if they don't exist.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, t := range tables {
		if err := drv.Exec(ctx, t.ddl, []any{}, nil); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}
