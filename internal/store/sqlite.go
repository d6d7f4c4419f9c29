package store

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/tomehq/tome/internal/catalog"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);`

// SQLite reads entry documents from a local database, for catalogs that
// are synced from elsewhere rather than checked out as files.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path, creating the schema if needed.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open catalog database %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot prepare catalog database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// List returns documents in insertion order, so duplicate precedence is
// stable across loads.
func (s *SQLite) List(ctx context.Context) ([]catalog.Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, body FROM entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("cannot query catalog database: %w", err)
	}
	defer rows.Close()

	var out []catalog.Source
	for rows.Next() {
		var src catalog.Source
		if err := rows.Scan(&src.ID, &src.Text); err != nil {
			return nil, fmt.Errorf("cannot scan catalog row: %w", err)
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read catalog rows: %w", err)
	}
	return out, nil
}

// Put inserts or replaces one document. Used by sync tooling and tests.
func (s *SQLite) Put(ctx context.Context, id, body string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, body) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			body = excluded.body,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		id, body)
	if err != nil {
		return fmt.Errorf("cannot store entry %s: %w", id, err)
	}
	return nil
}

// Delete removes one document. Removing an absent id is not an error.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cannot delete entry %s: %w", id, err)
	}
	return nil
}
