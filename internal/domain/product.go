package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is the record stored in the table: one row per product.
// ID uniqueness is the store's concern; nothing here enforces it.
type Product struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// maxPrice is the first value a DECIMAL(10,2) column cannot hold.
var maxPrice = decimal.New(1, 8)

// ParsePrice parses a monetary amount such as "899.99". Values the price
// column would round or overflow are rejected.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrValidation("invalid price %q", s)
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Decimal{}, ErrValidation("invalid price %q: at most two decimal places", s)
	}
	if d.Abs().GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, ErrValidation("invalid price %q: must be below %s", s, maxPrice)
	}
	return d, nil
}

// Equal reports whether p and o hold the same four values. Prices compare
// numerically, so 29.9 and 29.90 are equal.
func (p Product) Equal(o Product) bool {
	return p.ID == o.ID && p.Name == o.Name && p.Quantity == o.Quantity && p.Price.Equal(o.Price)
}

func (p Product) String() string {
	return fmt.Sprintf("ID: %d, Name: %s, Price: %s, Quantity: %d", p.ID, p.Name, p.Price.StringFixed(2), p.Quantity)
}
