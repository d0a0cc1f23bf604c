package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lake-crud/internal/ddl"
	"lake-crud/internal/domain"
	"lake-crud/internal/engine"
)

// newMockService returns a databricks-dialect service backed by sqlmock so
// the exact statement text sent to the warehouse can be asserted.
func newMockService(t *testing.T, mode ddl.BindMode) (*ProductService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	conn := engine.NewPooledConnector(db)
	t.Cleanup(func() {
		mock.ExpectClose()
		require.NoError(t, conn.Close())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	svc := NewProductService(conn, engine.Databricks, "main", "default", "products", mode, slog.New(slog.DiscardHandler))
	return svc, mock
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "price", "quantity"})
}

func TestStatements_Databricks(t *testing.T) {
	ctx := context.Background()

	t.Run("ensure_table", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS main.default.products (id INT, name STRING, price DECIMAL(10,2), quantity INT) USING DELTA").
			WillReturnResult(sqlmock.NewResult(0, 0))
		require.NoError(t, svc.EnsureTable(ctx))
	})

	t.Run("drop_table", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("DROP TABLE IF EXISTS main.default.products").
			WillReturnResult(sqlmock.NewResult(0, 0))
		require.NoError(t, svc.DropTable(ctx))
	})

	t.Run("insert_params", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("INSERT INTO main.default.products (id, name, price, quantity) VALUES (?, ?, CAST(? AS DECIMAL(10,2)), ?)").
			WithArgs(1, "Laptop", "999.99", 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, svc.Create(ctx, product(1, "Laptop", "999.99", 10)))
	})

	t.Run("insert_literal", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindLiteral)
		mock.ExpectExec("INSERT INTO main.default.products (id, name, price, quantity) VALUES (3, 'O''Brien', CAST(5.5 AS DECIMAL(10,2)), 1)").
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, svc.Create(ctx, product(3, "O'Brien", "5.50", 1)))
	})

	t.Run("select_by_id", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectQuery("SELECT id, name, CAST(price AS STRING) AS price, quantity FROM main.default.products WHERE id = ?").
			WithArgs(1).
			WillReturnRows(productRows().AddRow(1, "Laptop", "999.99", 10))

		got, found, err := svc.Get(ctx, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "ID: 1, Name: Laptop, Price: 999.99, Quantity: 10", got.String())
	})

	t.Run("select_all", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectQuery("SELECT id, name, CAST(price AS STRING) AS price, quantity FROM main.default.products").
			WillReturnRows(productRows().
				AddRow(1, "Laptop", "999.99", 10).
				AddRow(2, "Mouse", "29.99", 50))

		all, err := svc.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Mouse", all[1].Name)
	})

	t.Run("update", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("UPDATE main.default.products SET name = ?, price = CAST(? AS DECIMAL(10,2)), quantity = ? WHERE id = ?").
			WithArgs("Laptop", "899.99", 15, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := svc.Update(ctx, product(1, "Laptop", "899.99", 15))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("delete", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("DELETE FROM main.default.products WHERE id = ?").
			WithArgs(2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, err := svc.Delete(ctx, 2)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("show_schemas", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectQuery("SHOW SCHEMAS IN main").
			WillReturnRows(sqlmock.NewRows([]string{"databaseName", "catalog"}).
				AddRow("default", "main").
				AddRow("sales", "main"))

		var names []string
		for name, err := range svc.ListSchemas(ctx, "main") {
			require.NoError(t, err)
			names = append(names, name)
		}
		assert.Equal(t, []string{"default", "sales"}, names)
	})
}

func TestStatements_DriverErrorIsWrapped(t *testing.T) {
	svc, mock := newMockService(t, ddl.BindParams)
	boom := errors.New("[TABLE_OR_VIEW_NOT_FOUND]")
	mock.ExpectExec("DELETE FROM main.default.products WHERE id = ?").
		WithArgs(1).
		WillReturnError(boom)

	_, err := svc.Delete(context.Background(), 1)
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "delete", storeErr.Op)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "delete main.default.products: [TABLE_OR_VIEW_NOT_FOUND]", err.Error())
}

func TestStatements_RowErrorStopsList(t *testing.T) {
	svc, mock := newMockService(t, ddl.BindParams)
	boom := errors.New("stream reset")
	mock.ExpectQuery("SELECT id, name, CAST(price AS STRING) AS price, quantity FROM main.default.products").
		WillReturnRows(productRows().
			AddRow(1, "Laptop", "999.99", 10).
			AddRow(2, "Mouse", "29.99", 50).
			RowError(1, boom))

	var got []domain.Product
	var gotErr error
	for p, err := range svc.List(context.Background()) {
		if err != nil {
			gotErr = err
			continue
		}
		got = append(got, p)
	}
	require.Len(t, got, 1)
	require.ErrorIs(t, gotErr, boom)
}

func TestStatements_RowsAffectedUnavailable(t *testing.T) {
	ctx := context.Background()
	noCount := errors.New("rows affected not supported")

	t.Run("update_fails", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("UPDATE main.default.products SET name = ?, price = CAST(? AS DECIMAL(10,2)), quantity = ? WHERE id = ?").
			WithArgs("Laptop", "899.99", 15, 1).
			WillReturnResult(sqlmock.NewErrorResult(noCount))

		n, err := svc.Update(ctx, product(1, "Laptop", "899.99", 15))
		var storeErr *domain.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "update", storeErr.Op)
		assert.ErrorIs(t, err, noCount)
		assert.Zero(t, n)
	})

	t.Run("delete_fails", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("DELETE FROM main.default.products WHERE id = ?").
			WithArgs(2).
			WillReturnResult(sqlmock.NewErrorResult(noCount))

		_, err := svc.Delete(ctx, 2)
		var storeErr *domain.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "delete", storeErr.Op)
	})

	t.Run("ddl_ignores_count", func(t *testing.T) {
		svc, mock := newMockService(t, ddl.BindParams)
		mock.ExpectExec("DROP TABLE IF EXISTS main.default.products").
			WillReturnResult(sqlmock.NewErrorResult(noCount))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS main.default.products (id INT, name STRING, price DECIMAL(10,2), quantity INT) USING DELTA").
			WillReturnResult(sqlmock.NewErrorResult(noCount))

		require.NoError(t, svc.DropTable(ctx))
		require.NoError(t, svc.EnsureTable(ctx))
	})
}
