package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/duckdb/duckdb-go/v2"

	"lake-crud/internal/config"
	"lake-crud/internal/ddl"
)

// lakeSecretName names the S3 secret created for the lake data path.
const lakeSecretName = "lake_s3"

// lakeExtensions returns the extension statements needed before the lake can
// be attached. httpfs is only loaded for a lake on S3.
func lakeExtensions(lake config.LakeSettings) []string {
	stmts := []string{"INSTALL ducklake", "LOAD ducklake"}
	if lake.S3.Configured() || strings.HasPrefix(lake.DataPath, "s3://") {
		stmts = append(stmts, "INSTALL httpfs", "LOAD httpfs")
	}
	return stmts
}

// lakeInit returns the statements run on every new connection to make the
// lake available: extensions, then the optional S3 secret, then the attach.
// n is the number of leading extension statements.
func lakeInit(catalog string, lake config.LakeSettings) (stmts []string, n int, err error) {
	stmts = lakeExtensions(lake)
	n = len(stmts)

	if lake.S3.Configured() {
		secretSQL, err := ddl.CreateS3Secret(lakeSecretName, lake.S3.KeyID, lake.S3.Secret,
			lake.S3.Endpoint, lake.S3.Region, lake.S3.URLStyle)
		if err != nil {
			return nil, 0, fmt.Errorf("build DDL: %w", err)
		}
		stmts = append(stmts, secretSQL)
	}

	attachSQL, err := ddl.AttachDuckLake(catalog, lake.MetadataPath, lake.DataPath)
	if err != nil {
		return nil, 0, fmt.Errorf("build DDL: %w", err)
	}
	return append(stmts, attachSQL), n, nil
}

// OpenDuckDB opens the embedded database. When lake is enabled every new
// connection loads the DuckLake extensions and attaches the lake under the
// configured catalog name, so tables created there use the DuckLake format.
func OpenDuckDB(c config.ConnectionSettings, lake config.LakeSettings) (*sql.DB, error) {
	if !lake.Enabled() {
		return DuckDB.Open(c)
	}

	stmts, nExt, err := lakeInit(c.Catalog, lake)
	if err != nil {
		return nil, err
	}

	connector, err := duckdb.NewConnector(DuckDBDSN(c), func(execer driver.ExecerContext) error {
		ctx := context.Background()
		for i, stmt := range stmts {
			if _, err := execer.ExecContext(ctx, stmt, nil); err != nil {
				// Secrets carry credentials; only extension statements are echoed.
				if i < nExt {
					return fmt.Errorf("extension setup (%s): %w", stmt, err)
				}
				return fmt.Errorf("lake setup: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return sql.OpenDB(connector), nil
}
