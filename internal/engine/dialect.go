// Package engine connects to the backing store: it knows each supported
// driver's connection string and SQL quirks, and how connections are handed
// out to the service.
package engine

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/databricks/databricks-sql-go" // Databricks SQL driver

	"lake-crud/internal/config"
	"lake-crud/internal/ddl"
)

// DeltaStorage is the table format clause used on the warehouse.
const DeltaStorage = "USING DELTA"

// odbcDriverName is the ODBC driver manager entry for the Simba Spark driver.
const odbcDriverName = "Simba Spark ODBC Driver"

// Dialect captures what differs between backing stores: the database/sql
// driver, how the connection string is built, the table storage clause, and
// how schemas are listed.
type Dialect struct {
	Name       string
	DriverName string
	// Storage is appended to CREATE TABLE; empty when the engine has no
	// per-table format clause.
	Storage string

	dsn     func(c config.ConnectionSettings) string
	schemas func(catalog string, mode ddl.BindMode) ddl.Statement
}

// DSN builds the driver connection string for c.
func (d Dialect) DSN(c config.ConnectionSettings) string {
	return d.dsn(c)
}

// SchemasStatement returns the statement that lists the schemas of catalog.
// The first column of each row is the schema name.
func (d Dialect) SchemasStatement(catalog string, mode ddl.BindMode) ddl.Statement {
	return d.schemas(catalog, mode)
}

// Open returns a fresh *sql.DB for c. sql.Open does not dial; the first
// connection request does.
func (d Dialect) Open(c config.ConnectionSettings) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName, d.DSN(c))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	return db, nil
}

func showSchemas(catalog string, _ ddl.BindMode) ddl.Statement {
	return ddl.Statement{SQL: ddl.ShowSchemas(catalog)}
}

// Databricks talks to a SQL warehouse through the native Go driver.
var Databricks = Dialect{
	Name:       config.DriverDatabricks,
	DriverName: "databricks",
	Storage:    DeltaStorage,
	dsn:        DatabricksDSN,
	schemas:    showSchemas,
}

// ODBC talks to a SQL warehouse through the Simba Spark ODBC driver. The
// "odbc" database/sql driver is only registered in builds tagged odbc.
var ODBC = Dialect{
	Name:       config.DriverODBC,
	DriverName: "odbc",
	Storage:    DeltaStorage,
	dsn:        ODBCConnString,
	schemas:    showSchemas,
}

// DuckDB uses an embedded database file named by the host setting.
var DuckDB = Dialect{
	Name:       config.DriverDuckDB,
	DriverName: "duckdb",
	dsn:        DuckDBDSN,
	schemas:    ddl.SelectSchemata,
}

// DialectFor returns the dialect registered under driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverDatabricks:
		return Databricks, nil
	case config.DriverODBC:
		return ODBC, nil
	case config.DriverDuckDB:
		return DuckDB, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// DatabricksDSN returns token:<token>@<host>:443<http_path>. The driver always
// uses TLS and personal access token auth for this form.
func DatabricksDSN(c config.ConnectionSettings) string {
	host := strings.TrimPrefix(strings.TrimPrefix(c.Host, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	if !strings.Contains(host, ":") {
		host += ":443"
	}
	path := c.HTTPPath
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("token:%s@%s%s", c.Token, host, path)
}

// ODBCConnString returns the Simba Spark connection string: HTTP transport
// over SSL on 443 with user "token" and the access token as password.
func ODBCConnString(c config.ConnectionSettings) string {
	parts := []string{
		"Driver={" + odbcDriverName + "}",
		"Host=" + c.Host,
		"Port=443",
		"SSL=1",
		"ThriftTransport=2",
		"AuthMech=3",
		"UID=token",
		"PWD=" + c.Token,
		"HTTPPath=" + c.HTTPPath,
	}
	return strings.Join(parts, ";")
}

// DuckDBDSN returns the database file path. The file's base name becomes the
// default catalog, so lake.duckdb is addressed as lake.<schema>.<table>.
func DuckDBDSN(c config.ConnectionSettings) string {
	return c.Host
}

// RedactedDSN returns the DSN with the token replaced, for logging.
func (d Dialect) RedactedDSN(c config.ConnectionSettings) string {
	if c.Token == "" {
		return d.DSN(c)
	}
	c.Token = "[redacted]"
	return d.DSN(c)
}
