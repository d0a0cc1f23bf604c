package app

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"lake-crud/internal/domain"
)

// DemoProducts are the rows the demo creates.
func DemoProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99"), Quantity: 10},
		{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("29.99"), Quantity: 50},
	}
}

// RunDemo exercises every operation once against store, printing progress to
// out. Schema listing is best effort; any other failure stops the sequence
// and is returned.
func RunDemo(ctx context.Context, store domain.ProductStore, catalog string, out io.Writer) error {
	p := &printer{w: out}

	p.heading("Checking available catalogs and schemas")
	if err := PrintSchemas(ctx, store, catalog, out); err != nil {
		p.line("Could not list catalogs/schemas: %v", err)
	}

	p.heading("Dropping table if exists")
	if err := store.DropTable(ctx); err != nil {
		return err
	}

	p.heading("Creating/verifying table")
	if err := store.EnsureTable(ctx); err != nil {
		return err
	}

	p.heading("CREATE operation")
	products := DemoProducts()
	for _, prod := range products {
		if err := store.Create(ctx, prod); err != nil {
			return err
		}
		p.line("Product created: %s", prod.Name)
	}

	p.heading("READ operation")
	if err := PrintProducts(ctx, store, out); err != nil {
		return err
	}

	p.heading("UPDATE operation")
	laptop := products[0]
	laptop.Price = decimal.RequireFromString("899.99")
	laptop.Quantity = 15
	n, err := store.Update(ctx, laptop)
	if err != nil {
		return err
	}
	p.line("Product updated: %s (rows affected: %d)", laptop.Name, n)
	if err := PrintProducts(ctx, store, out); err != nil {
		return err
	}

	p.heading("DELETE operation")
	n, err = store.Delete(ctx, products[1].ID)
	if err != nil {
		return err
	}
	p.line("Product deleted: ID %d (rows affected: %d)", products[1].ID, n)
	if err := PrintProducts(ctx, store, out); err != nil {
		return err
	}

	p.heading("CRUD operations completed successfully")
	return p.err
}

// PrintProducts writes every row of the table to out, one per line.
func PrintProducts(ctx context.Context, store domain.ProductStore, out io.Writer) error {
	p := &printer{w: out}
	p.line("--- All Products ---")
	for prod, err := range store.List(ctx) {
		if err != nil {
			return err
		}
		p.line("%s", prod)
	}
	return p.err
}

// PrintSchemas writes the schema names of catalog to out.
func PrintSchemas(ctx context.Context, store domain.ProductStore, catalog string, out io.Writer) error {
	p := &printer{w: out}
	p.line("--- Available Schemas in %s ---", catalog)
	for name, err := range store.ListSchemas(ctx, catalog) {
		if err != nil {
			return err
		}
		p.line("Schema: %s", name)
	}
	return p.err
}

// printer remembers the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) heading(title string) {
	p.line("\n=== %s ===", title)
}
