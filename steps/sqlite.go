package steps

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/configura/configura/formats"
	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type sqliteParams struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
	RunID string `yaml:"run_id"`
}

func decodeSQLiteParams(p pipeline.Params, allowRunID bool) (sqliteParams, error) {
	params := sqliteParams{Table: "records"}
	if err := pipeline.DecodeParams(p, &params); err != nil {
		return params, err
	}
	if params.Path == "" {
		return params, fmt.Errorf("path is required")
	}
	if !tableNamePattern.MatchString(params.Table) {
		return params, fmt.Errorf("table %q must match %s", params.Table, tableNamePattern)
	}
	if params.RunID != "" && !allowRunID {
		return params, fmt.Errorf("run_id only applies to ReadSqlite")
	}
	return params, nil
}

// WriteSqlite appends records to a SQLite table as JSON documents tagged
// with the run id, and passes data through unchanged.
type WriteSqlite struct {
	rc    *runtime.Context
	path  string
	table string
}

func newWriteSqlite(rc *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	params, err := decodeSQLiteParams(p, false)
	if err != nil {
		return nil, err
	}
	return &WriteSqlite{rc: rc, path: params.Path, table: params.Table}, nil
}

// Process inserts data in a single transaction.
func (s *WriteSqlite) Process(ctx context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", s.path, err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer db.Close()

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		record TEXT NOT NULL
	)`, s.table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", s.table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (run_id, record) VALUES (?, ?)`, s.table))
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for i, rec := range data {
		doc, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, s.rc.RunID, string(doc)); err != nil {
			return nil, fmt.Errorf("inserting record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing to %s: %w", s.path, err)
	}

	s.rc.Logger.Info("output written", map[string]any{"path": s.path, "table": s.table, "records": len(data)})
	return data, nil
}

// ReadSqlite loads the JSON documents stored by WriteSqlite, optionally
// restricted to one run id.
type ReadSqlite struct {
	rc    *runtime.Context
	path  string
	table string
	runID string
}

func newReadSqlite(rc *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	params, err := decodeSQLiteParams(p, true)
	if err != nil {
		return nil, err
	}
	return &ReadSqlite{rc: rc, path: params.Path, table: params.Table, runID: params.RunID}, nil
}

// Process ignores data and returns the stored records in insertion order.
func (s *ReadSqlite) Process(ctx context.Context, _ pipeline.Batch) (pipeline.Batch, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT record FROM %s`, s.table)
	var args []any
	if s.runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, s.runID)
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	out := pipeline.Batch{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		recs, err := formats.DecodeJSONRecords([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", len(out)+1, err)
		}
		out = append(out, recs...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.rc.SetInput(s.path)
	return out, nil
}
