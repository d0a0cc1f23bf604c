// Package service implements the product table operations on top of an
// engine.Connector.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"log/slog"

	"lake-crud/internal/ddl"
	"lake-crud/internal/domain"
	"lake-crud/internal/engine"
)

// Compile-time check.
var _ domain.ProductStore = (*ProductService)(nil)

// ProductService runs one statement per call against the qualified product
// table. It holds no rows; the store is the only source of truth.
type ProductService struct {
	connector engine.Connector
	dialect   engine.Dialect
	table     string
	mode      ddl.BindMode
	logger    *slog.Logger
}

// NewProductService creates a ProductService for catalog.schema.table. No
// connection is opened until the first operation.
func NewProductService(connector engine.Connector, dialect engine.Dialect, catalog, schema, table string, mode ddl.BindMode, logger *slog.Logger) *ProductService {
	return &ProductService{
		connector: connector,
		dialect:   dialect,
		table:     ddl.QualifiedName(catalog, schema, table),
		mode:      mode,
		logger:    logger,
	}
}

// Table returns the qualified table reference used in every statement.
func (s *ProductService) Table() string {
	return s.table
}

// Create inserts p.
func (s *ProductService) Create(ctx context.Context, p domain.Product) error {
	if _, err := s.exec(ctx, "insert", ddl.Insert(s.table, p, s.mode), false); err != nil {
		return err
	}
	s.logger.Info("product created", "id", p.ID, "name", p.Name)
	return nil
}

// Get returns the first row whose id matches. found is false when no row does.
func (s *ProductService) Get(ctx context.Context, id int) (domain.Product, bool, error) {
	const op = "select"
	st := ddl.SelectByID(s.table, id, s.mode)

	conn, release, err := s.connector.Acquire(ctx)
	if err != nil {
		return domain.Product{}, false, domain.ErrStore(op, s.table, err)
	}
	defer s.release(release)

	rows, err := conn.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return domain.Product{}, false, domain.ErrStore(op, s.table, err)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Product{}, false, domain.ErrStore(op, s.table, err)
		}
		return domain.Product{}, false, nil
	}
	p, err := scanProduct(rows)
	if err != nil {
		return domain.Product{}, false, domain.ErrStore(op, s.table, err)
	}
	return p, true, nil
}

// List yields every row of the table. The connection is released when the
// loop finishes or breaks. After an error nothing more is yielded.
func (s *ProductService) List(ctx context.Context) iter.Seq2[domain.Product, error] {
	const op = "select"
	st := ddl.SelectAll(s.table)

	return func(yield func(domain.Product, error) bool) {
		fail := func(err error) { yield(domain.Product{}, domain.ErrStore(op, s.table, err)) }

		conn, release, err := s.connector.Acquire(ctx)
		if err != nil {
			fail(err)
			return
		}
		defer s.release(release)

		rows, err := conn.QueryContext(ctx, st.SQL, st.Args...)
		if err != nil {
			fail(err)
			return
		}
		defer rows.Close() //nolint:errcheck

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				fail(err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			fail(err)
		}
	}
}

// ListAll drains List into a slice.
func (s *ProductService) ListAll(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for p, err := range s.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Update rewrites name, price and quantity of the rows with p.ID and returns
// how many rows changed. Zero is a valid result.
func (s *ProductService) Update(ctx context.Context, p domain.Product) (int64, error) {
	n, err := s.exec(ctx, "update", ddl.Update(s.table, p, s.mode), true)
	if err != nil {
		return 0, err
	}
	s.logger.Info("product updated", "id", p.ID, "name", p.Name, "rows_affected", n)
	return n, nil
}

// Delete removes the rows with id and returns how many were removed. Zero is
// a valid result.
func (s *ProductService) Delete(ctx context.Context, id int) (int64, error) {
	n, err := s.exec(ctx, "delete", ddl.Delete(s.table, id, s.mode), true)
	if err != nil {
		return 0, err
	}
	s.logger.Info("product deleted", "id", id, "rows_affected", n)
	return n, nil
}

// EnsureTable creates the table if it does not exist.
func (s *ProductService) EnsureTable(ctx context.Context) error {
	st := ddl.Statement{SQL: ddl.CreateProductTable(s.table, s.dialect.Storage)}
	if _, err := s.exec(ctx, "create table", st, false); err != nil {
		return err
	}
	s.logger.Info("table created or already exists", "table", s.table)
	return nil
}

// DropTable drops the table if it exists.
func (s *ProductService) DropTable(ctx context.Context) error {
	st := ddl.Statement{SQL: ddl.DropTable(s.table)}
	if _, err := s.exec(ctx, "drop table", st, false); err != nil {
		return err
	}
	s.logger.Info("table dropped if it existed", "table", s.table)
	return nil
}

// ListSchemas yields the schema names of catalog.
func (s *ProductService) ListSchemas(ctx context.Context, catalog string) iter.Seq2[string, error] {
	const op = "list schemas"
	st := s.dialect.SchemasStatement(catalog, s.mode)

	return func(yield func(string, error) bool) {
		fail := func(err error) { yield("", domain.ErrStore(op, catalog, err)) }

		conn, release, err := s.connector.Acquire(ctx)
		if err != nil {
			fail(err)
			return
		}
		defer s.release(release)

		rows, err := conn.QueryContext(ctx, st.SQL, st.Args...)
		if err != nil {
			fail(err)
			return
		}
		defer rows.Close() //nolint:errcheck

		cols, err := rows.Columns()
		if err != nil {
			fail(err)
			return
		}
		if len(cols) == 0 {
			fail(fmt.Errorf("schema listing returned no columns"))
			return
		}

		// Only the first column is the name; some engines add more.
		var name string
		dest := make([]any, len(cols))
		dest[0] = &name
		for i := 1; i < len(dest); i++ {
			dest[i] = new(any)
		}

		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				fail(err)
				return
			}
			if !yield(name, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			fail(err)
		}
	}
}

// exec runs st on a fresh connection. When counted is set the rows affected
// are returned and a driver that cannot report them fails the operation;
// otherwise the count is ignored, as DDL results may not carry one.
func (s *ProductService) exec(ctx context.Context, op string, st ddl.Statement, counted bool) (int64, error) {
	conn, release, err := s.connector.Acquire(ctx)
	if err != nil {
		return 0, domain.ErrStore(op, s.table, err)
	}
	defer s.release(release)

	s.logger.Debug("exec", "op", op, "sql", st.SQL)
	res, err := conn.ExecContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return 0, domain.ErrStore(op, s.table, err)
	}
	if !counted {
		return 0, nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.ErrStore(op, s.table, fmt.Errorf("rows affected: %w", err))
	}
	return n, nil
}

func (s *ProductService) release(release engine.Release) {
	if err := release(); err != nil {
		s.logger.Warn("release connection", "table", s.table, "error", err)
	}
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var p domain.Product
	if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity); err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
