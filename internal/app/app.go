// Package app wires settings into a ready-to-use product service and runs
// the demo sequence.
package app

import (
	"fmt"
	"log/slog"

	"lake-crud/internal/config"
	"lake-crud/internal/ddl"
	"lake-crud/internal/engine"
	"lake-crud/internal/service"
)

// App holds the wired components for one process.
type App struct {
	Settings  config.Settings
	Dialect   engine.Dialect
	Connector engine.Connector
	Products  *service.ProductService
	Logger    *slog.Logger
}

// New builds the dialect, connection strategy and product service described
// by s. No connection is made unless s.Pooled asks for a shared pool, and even
// then the first dial happens on the first operation.
func New(s config.Settings, logger *slog.Logger) (*App, error) {
	dialect, err := engine.DialectFor(s.Driver)
	if err != nil {
		return nil, err
	}
	mode, err := ddl.ParseBindMode(s.BindMode)
	if err != nil {
		return nil, err
	}
	conn, err := engine.NewConnector(dialect, s)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}

	logger.Debug("connection configured",
		"driver", dialect.Name,
		"dsn", dialect.RedactedDSN(s.Connection),
		"pooled", s.Pooled,
		"bind_mode", mode.String(),
	)

	c := s.Connection
	products := service.NewProductService(conn, dialect, c.Catalog, c.Schema, c.TableName, mode,
		logger.With("component", "products"))

	return &App{
		Settings:  s,
		Dialect:   dialect,
		Connector: conn,
		Products:  products,
		Logger:    logger,
	}, nil
}

// Close releases the connection strategy.
func (a *App) Close() error {
	return a.Connector.Close()
}
