package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn records statements and answers every query with a single zero.
type stubConn struct {
	mu       sync.Mutex
	execs    []string
	failPing bool
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) Ping(context.Context) error {
	if c.failPing {
		return errors.New("connection refused")
	}
	return nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return &stubRows{}, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct{ done bool }

func (r *stubRows) Columns() []string { return []string{"value"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = int64(0)
	return nil
}

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func newStubDB(t *testing.T, conn *stubConn) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	require.NoError(t, err)
	return db
}

func TestNewStore_AppliesMigrations(t *testing.T) {
	conn := &stubConn{}
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dsn
		return newStubDB(t, conn), nil
	})
	defer restore()

	store, err := NewStore(context.Background(), "")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, defaultDSN, gotDSN)

	joined := strings.Join(conn.execs, "\n")
	assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS schema_migrations")
	assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS records")
	assert.Contains(t, joined, "BIGSERIAL")
	assert.Contains(t, joined, "INSERT INTO schema_migrations (version) VALUES ($1)")

	assert.NotNil(t, store.RecordStore())
	assert.NotNil(t, store.HoldingsStore())
}

func TestNewStore_OpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) {
		return nil, errors.New("bad dsn")
	})
	defer restore()

	_, err := NewStore(context.Background(), "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open postgres")
}

func TestNewStore_PingError(t *testing.T) {
	conn := &stubConn{failPing: true}
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) {
		return newStubDB(t, conn), nil
	})
	defer restore()

	_, err := NewStore(context.Background(), "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
	assert.Empty(t, conn.execs)
}

func TestStore_RecordStoreUsesNumberedPlaceholders(t *testing.T) {
	conn := &stubConn{}
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) {
		return newStubDB(t, conn), nil
	})
	defer restore()

	store, err := NewStore(context.Background(), "postgres://x")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.HoldingsStore().SetHoldings(context.Background(), "1", 700400, true))
	last := conn.execs[len(conn.execs)-1]
	assert.Contains(t, last, "VALUES ($1, $2)")
}
