// Package ddl builds the SQL statements the client sends to the backing store.
package ddl

import (
	"fmt"
	"strconv"
	"strings"

	"lake-crud/internal/domain"
)

// BindMode selects how values reach the store.
type BindMode int

const (
	// BindParams sends values as driver parameters behind ? placeholders.
	BindParams BindMode = iota
	// BindLiteral interpolates escaped values into the statement text. It is
	// kept for drivers without parameter support.
	BindLiteral
)

func (m BindMode) String() string {
	if m == BindLiteral {
		return "literal"
	}
	return "params"
}

// ParseBindMode maps "params" or "literal" to a BindMode.
func ParseBindMode(s string) (BindMode, error) {
	switch strings.ToLower(s) {
	case "", "params":
		return BindParams, nil
	case "literal":
		return BindLiteral, nil
	default:
		return BindParams, fmt.Errorf("unsupported bind mode %q: use 'params' or 'literal'", s)
	}
}

// Statement is SQL text plus the arguments for its placeholders.
type Statement struct {
	SQL  string
	Args []any
}

// PriceType is the declared type of the price column.
const PriceType = "DECIMAL(10,2)"

// productColumns is the fixed table layout.
const productColumns = "id INT, name STRING, price " + PriceType + ", quantity INT"

// selectList reads price back as text so the exact decimal survives every driver.
const selectList = "id, name, CAST(price AS STRING) AS price, quantity"

// QualifiedName returns catalog.schema.table. Parts are not validated; a bad
// name surfaces as a store error when a statement runs.
func QualifiedName(catalog, schema, table string) string {
	return catalog + "." + schema + "." + table
}

// builder accumulates SQL and arguments for one statement.
type builder struct {
	mode BindMode
	args []any
}

func (b *builder) strVal(v string) string {
	if b.mode == BindLiteral {
		return QuoteLiteral(v)
	}
	b.args = append(b.args, v)
	return "?"
}

func (b *builder) intVal(v int) string {
	if b.mode == BindLiteral {
		return strconv.Itoa(v)
	}
	b.args = append(b.args, v)
	return "?"
}

func (b *builder) priceVal(p domain.Product) string {
	if b.mode == BindLiteral {
		return "CAST(" + p.Price.String() + " AS " + PriceType + ")"
	}
	b.args = append(b.args, p.Price.String())
	return "CAST(? AS " + PriceType + ")"
}

// Insert adds one row with all four columns.
func Insert(table string, p domain.Product, mode BindMode) Statement {
	b := &builder{mode: mode}
	sql := fmt.Sprintf("INSERT INTO %s (id, name, price, quantity) VALUES (%s, %s, %s, %s)",
		table, b.intVal(p.ID), b.strVal(p.Name), b.priceVal(p), b.intVal(p.Quantity))
	return Statement{SQL: sql, Args: b.args}
}

// SelectByID reads the rows matching id.
func SelectByID(table string, id int, mode BindMode) Statement {
	b := &builder{mode: mode}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", selectList, table, b.intVal(id))
	return Statement{SQL: sql, Args: b.args}
}

// SelectAll reads every row in the table.
func SelectAll(table string) Statement {
	return Statement{SQL: fmt.Sprintf("SELECT %s FROM %s", selectList, table)}
}

// Update rewrites name, price and quantity of the rows matching p.ID.
func Update(table string, p domain.Product, mode BindMode) Statement {
	b := &builder{mode: mode}
	sql := fmt.Sprintf("UPDATE %s SET name = %s, price = %s, quantity = %s WHERE id = %s",
		table, b.strVal(p.Name), b.priceVal(p), b.intVal(p.Quantity), b.intVal(p.ID))
	return Statement{SQL: sql, Args: b.args}
}

// Delete removes the rows matching id.
func Delete(table string, id int, mode BindMode) Statement {
	b := &builder{mode: mode}
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = %s", table, b.intVal(id))
	return Statement{SQL: sql, Args: b.args}
}

// CreateProductTable returns CREATE TABLE IF NOT EXISTS for the product layout.
// storage is appended verbatim when set, e.g. "USING DELTA".
func CreateProductTable(table, storage string) string {
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, productColumns)
	if storage != "" {
		stmt += " " + storage
	}
	return stmt
}

// DropTable returns DROP TABLE IF EXISTS for table.
func DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + table
}

// ShowSchemas returns the warehouse introspection statement for catalog.
func ShowSchemas(catalog string) string {
	return "SHOW SCHEMAS IN " + catalog
}

// SelectSchemata lists schema names of catalog from information_schema.
func SelectSchemata(catalog string, mode BindMode) Statement {
	b := &builder{mode: mode}
	sql := fmt.Sprintf("SELECT schema_name FROM information_schema.schemata WHERE catalog_name = %s ORDER BY schema_name",
		b.strVal(catalog))
	return Statement{SQL: sql, Args: b.args}
}

// AttachDuckLake returns a DuckDB statement to attach a DuckLake catalog.
// dataPath may be empty, in which case DuckLake picks its default location.
func AttachDuckLake(catalogName, metaDBPath, dataPath string) (string, error) {
	if err := ValidateIdentifier(catalogName); err != nil {
		return "", fmt.Errorf("invalid catalog name: %w", err)
	}
	if metaDBPath == "" {
		return "", fmt.Errorf("metastore path is required")
	}
	connStr := QuoteLiteral("ducklake:" + metaDBPath)
	if dataPath == "" {
		return fmt.Sprintf("ATTACH IF NOT EXISTS %s AS %s", connStr, QuoteIdentifier(catalogName)), nil
	}
	return fmt.Sprintf("ATTACH IF NOT EXISTS %s AS %s (DATA_PATH %s)",
		connStr,
		QuoteIdentifier(catalogName),
		QuoteLiteral(dataPath),
	), nil
}

// CreateS3Secret returns a DuckDB statement that creates (or replaces) a named
// secret for S3-compatible storage. Empty endpoint, region and urlStyle are
// left out so DuckDB applies its defaults.
func CreateS3Secret(name, keyID, secret, endpoint, region, urlStyle string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid secret name: %w", err)
	}
	if keyID == "" || secret == "" {
		return "", fmt.Errorf("key id and secret are required")
	}
	opts := []string{"TYPE S3", "KEY_ID " + QuoteLiteral(keyID), "SECRET " + QuoteLiteral(secret)}
	if endpoint != "" {
		opts = append(opts, "ENDPOINT "+QuoteLiteral(endpoint))
	}
	if region != "" {
		opts = append(opts, "REGION "+QuoteLiteral(region))
	}
	if urlStyle != "" {
		opts = append(opts, "URL_STYLE "+QuoteLiteral(urlStyle))
	}
	return fmt.Sprintf("CREATE OR REPLACE SECRET %s (%s)", QuoteIdentifier(name), strings.Join(opts, ", ")), nil
}
