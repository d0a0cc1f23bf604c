package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lake-crud/internal/config"
)

// Release returns a connection obtained from Acquire. It must be called
// exactly once on every path.
type Release func() error

// Connector hands out connections to the backing store. Implementations
// decide whether a connection is fresh or borrowed from a pool.
type Connector interface {
	Acquire(ctx context.Context) (*sql.Conn, Release, error)
	Close() error
}

// OpenFunc opens a new *sql.DB for the configured dialect.
type OpenFunc func() (*sql.DB, error)

// Compile-time interface checks.
var (
	_ Connector = (*ScopedConnector)(nil)
	_ Connector = (*PooledConnector)(nil)
)

// ScopedConnector opens a new database handle for every Acquire and tears it
// down on Release. Nothing is shared between operations.
type ScopedConnector struct {
	open OpenFunc
}

// NewScopedConnector creates a ScopedConnector using open for each acquisition.
func NewScopedConnector(open OpenFunc) *ScopedConnector {
	return &ScopedConnector{open: open}
}

// Acquire opens a database handle and takes a single connection from it.
func (c *ScopedConnector) Acquire(ctx context.Context) (*sql.Conn, Release, error) {
	db, err := c.open()
	if err != nil {
		return nil, nil, fmt.Errorf("open connection: %w", err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("open connection: %w", err)
	}
	release := func() error {
		return errors.Join(conn.Close(), db.Close())
	}
	return conn, release, nil
}

// Close is a no-op; scoped connections are closed by their Release.
func (c *ScopedConnector) Close() error { return nil }

// PooledConnector borrows connections from one long-lived *sql.DB.
type PooledConnector struct {
	db *sql.DB
}

// NewPooledConnector wraps db. The connector owns db and closes it on Close.
func NewPooledConnector(db *sql.DB) *PooledConnector {
	return &PooledConnector{db: db}
}

// Acquire borrows a connection; Release returns it to the pool.
func (c *PooledConnector) Acquire(ctx context.Context) (*sql.Conn, Release, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, conn.Close, nil
}

// Close closes the underlying pool.
func (c *PooledConnector) Close() error {
	return c.db.Close()
}

// NewOpenFunc returns the OpenFunc for settings s.
func NewOpenFunc(d Dialect, s config.Settings) OpenFunc {
	if d.Name == config.DriverDuckDB {
		return func() (*sql.DB, error) { return OpenDuckDB(s.Connection, s.Lake) }
	}
	return func() (*sql.DB, error) { return d.Open(s.Connection) }
}

// NewConnector returns the connection strategy selected by s.Pooled.
func NewConnector(d Dialect, s config.Settings) (Connector, error) {
	open := NewOpenFunc(d, s)
	if !s.Pooled {
		return NewScopedConnector(open), nil
	}
	db, err := open()
	if err != nil {
		return nil, err
	}
	return NewPooledConnector(db), nil
}
