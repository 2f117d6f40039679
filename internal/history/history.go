// Package history persists conversion outputs so users can revisit and
// download earlier generations. Records live in a single sqlite table; the
// store is safe for concurrent use through database/sql's pooling.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("history: record not found")

// Record is one stored generation.
type Record struct {
	ID        int64
	CreatedAt time.Time
	// Kind identifies the pipeline, e.g. "python-direct" or "sql-advanced".
	Kind string
	// Workflow is the source workflow's display name.
	Workflow string
	ToolIDs  []string
	Output   string
	// Prompt is the final generation prompt, kept for inspection.
	Prompt string
}

// Store is a sqlite-backed history log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS generations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	kind       TEXT NOT NULL,
	workflow   TEXT NOT NULL,
	tool_ids   TEXT NOT NULL,
	output     TEXT NOT NULL,
	prompt     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS generations_created_at ON generations (created_at DESC);
`

// Open creates or opens the history database at path. ":memory:" yields an
// ephemeral store, which the tests use.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY without a retry loop.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores a record and returns its assigned id.
func (s *Store) Append(ctx context.Context, rec Record) (int64, error) {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (created_at, kind, workflow, tool_ids, output, prompt)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.Format(time.RFC3339Nano), rec.Kind, rec.Workflow,
		strings.Join(rec.ToolIDs, ","), rec.Output, rec.Prompt)
	if err != nil {
		return 0, fmt.Errorf("history: append: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: append id: %w", err)
	}
	return id, nil
}

// List returns all records, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, kind, workflow, tool_ids, output, prompt
		 FROM generations ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}

// Get returns one record by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, kind, workflow, tool_ids, output, prompt
		 FROM generations WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// Delete removes one record by id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("history: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: delete %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Prune keeps the newest keep records and removes the rest, returning how
// many were dropped. keep <= 0 clears the log.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM generations WHERE id NOT IN
		 (SELECT id FROM generations ORDER BY id DESC LIMIT ?)`, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var created, ids string
	if err := row.Scan(&rec.ID, &created, &rec.Kind, &rec.Workflow, &ids, &rec.Output, &rec.Prompt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sql.ErrNoRows
		}
		return Record{}, fmt.Errorf("history: scan: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Record{}, fmt.Errorf("history: parse timestamp %q: %w", created, err)
	}
	rec.CreatedAt = ts
	if ids != "" {
		rec.ToolIDs = strings.Split(ids, ",")
	}
	return rec, nil
}
