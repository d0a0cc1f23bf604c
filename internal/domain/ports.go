package domain

import (
	"context"
	"iter"
)

// ProductStore is the CRUD surface over the product table. Every method
// runs exactly one statement on its own connection.
//
// Absence is not an error: Get reports found=false, and Update/Delete report
// zero rows affected.
type ProductStore interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id int) (Product, bool, error)
	// List yields every row. The sequence is single-use and holds a
	// connection until iteration ends.
	List(ctx context.Context) iter.Seq2[Product, error]
	Update(ctx context.Context, p Product) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
	EnsureTable(ctx context.Context) error
	DropTable(ctx context.Context) error
	ListSchemas(ctx context.Context, catalog string) iter.Seq2[string, error]
}
