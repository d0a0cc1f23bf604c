package engine

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lake-crud/internal/config"
)

func duckSettings(t *testing.T) config.Settings {
	t.Helper()
	return config.Settings{
		Driver: config.DriverDuckDB,
		Connection: config.ConnectionSettings{
			Host:      filepath.Join(t.TempDir(), "lake.duckdb"),
			Catalog:   "lake",
			Schema:    "main",
			TableName: "products",
		},
	}
}

func TestScopedConnector_FreshConnectionPerAcquire(t *testing.T) {
	ctx := context.Background()
	s := duckSettings(t)
	c, err := NewConnector(DuckDB, s)
	require.NoError(t, err)
	require.IsType(t, &ScopedConnector{}, c)

	conn, release, err := c.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "CREATE TABLE t (x INT)")
	require.NoError(t, err)
	require.NoError(t, release())

	// Released connections are unusable.
	assert.ErrorIs(t, conn.PingContext(ctx), sql.ErrConnDone)

	// The file outlives the connection.
	conn, release, err = c.Acquire(ctx)
	require.NoError(t, err)
	defer release() //nolint:errcheck
	var n int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT count(*) FROM lake.main.t").Scan(&n))
	assert.Equal(t, 0, n)

	assert.NoError(t, c.Close())
}

func TestScopedConnector_OpenError(t *testing.T) {
	boom := errors.New("boom")
	c := NewScopedConnector(func() (*sql.DB, error) { return nil, boom })

	_, _, err := c.Acquire(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "open connection")
}

func TestScopedConnector_ConnError(t *testing.T) {
	s := duckSettings(t)
	s.Connection.Host = filepath.Join(t.TempDir(), "missing", "dir", "lake.duckdb")
	c := NewScopedConnector(NewOpenFunc(DuckDB, s))

	_, _, err := c.Acquire(context.Background())
	assert.ErrorContains(t, err, "open connection")
}

func TestPooledConnector(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	c := NewPooledConnector(db)
	ctx := context.Background()

	conn, release, err := c.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, release())
	assert.ErrorIs(t, conn.PingContext(ctx), sql.ErrConnDone)

	// The pool survives a release.
	_, release, err = c.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, release())

	mock.ExpectClose()
	require.NoError(t, c.Close())
	require.NoError(t, mock.ExpectationsWereMet())

	_, _, err = c.Acquire(ctx)
	assert.ErrorContains(t, err, "acquire connection")
}

func TestNewConnector_Pooled(t *testing.T) {
	s := duckSettings(t)
	s.Pooled = true

	c, err := NewConnector(DuckDB, s)
	require.NoError(t, err)
	require.IsType(t, &PooledConnector{}, c)
	assert.NoError(t, c.Close())
}
