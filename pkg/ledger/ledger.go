// Package ledger persists the append-only records that make repeated runs
// idempotent: downloaded images, published posts, and run bookkeeping.
// Image and post rows are written once and never updated; existence of a
// row is the signal. Run rows get a finish stamp.
//
// Single-writer-process operation is assumed, not enforced: two processes
// sharing one ledger file can race between check and write.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Ledger wraps the sqlite database holding all ledger tables.
type Ledger struct {
	*sql.DB
	path string
}

func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return sqlDB, nil
}

// Open opens or creates the ledger database at path, initializing the
// schema on first use.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger dir: %w", err)
		}
	}

	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	l := &Ledger{DB: sqlDB, path: path}
	if err := l.ensureSchemaExists(); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return l, nil
}

// ensureSchemaExists checks for the posts table and initializes the schema
// when absent.
func (l *Ledger) ensureSchemaExists() error {
	var tableName string
	err := l.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='posts'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return l.InitSchema()
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// InitSchema creates all ledger tables.
func (l *Ledger) InitSchema() error {
	_, err := l.Exec(schema)
	return err
}
