// Package postgres provides the PostgreSQL storage backend.
//
// The database is opened through the pgx database/sql driver and migrated on
// startup; the stores themselves live in the shared sqldb package. Concurrent
// saves of one key serialise on the row lock taken by INSERT ... ON CONFLICT.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/sqldb"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/rawrepo?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is the PostgreSQL database holding the repository tables.
type Store struct {
	db *sql.DB
}

// NewStore opens and migrates the database at dsn (falls back to defaultDSN).
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := sqldb.Migrate(ctx, db, sqldb.Postgres, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStore returns a RecordStore backed by this database.
func (s *Store) RecordStore() driven.RecordStore {
	return sqldb.NewRecordStore(s.db, sqldb.Postgres)
}

// HoldingsStore returns a HoldingsStore backed by this database.
func (s *Store) HoldingsStore() driven.HoldingsStore {
	return sqldb.NewHoldingsStore(s.db, sqldb.Postgres)
}
