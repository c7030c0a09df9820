package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/sqldb"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// Store is the SQLite database holding the repository tables.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.rawrepo/data/rawrepo.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".rawrepo", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rawrepo.db")

	// WAL lets readers proceed while a record save holds the write lock.
	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqldb.Migrate(context.Background(), db, sqldb.SQLite, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns a RecordStore backed by this database.
func (s *Store) RecordStore() driven.RecordStore {
	return sqldb.NewRecordStore(s.db, sqldb.SQLite)
}

// HoldingsStore returns a HoldingsStore backed by this database.
func (s *Store) HoldingsStore() driven.HoldingsStore {
	return sqldb.NewHoldingsStore(s.db, sqldb.SQLite)
}
