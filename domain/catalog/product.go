/*
Package catalog owns product records: price and available stock.

Product is plain data. Rules over it are free functions so the order
placement code can work on snapshots without mutating catalog state; the
only stock mutation is Inventory.DecrementStock inside a transaction.
*/
package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

const MaxNameLength = 255

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       shared.Money
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate enforces the invariants every stored product satisfies.
func (p Product) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return NewInvalidProductError("name", "The name field is required.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return NewInvalidProductError("name", "The name may not be greater than 255 characters.")
	}
	if p.Price.IsNegative() {
		return NewInvalidProductError("price", "The price must be at least 0.")
	}
	if p.Stock < 0 {
		return NewInvalidProductError("stock", "The stock must be at least 0.")
	}
	return nil
}

// Changes is a partial product update. Nil fields are not written, so an
// update that leaves Stock nil can never overwrite a concurrent decrement.
type Changes struct {
	Name        *string
	Description *string
	Price       *shared.Money
	Stock       *int
}

// Apply returns p with the present fields replaced.
func (c Changes) Apply(p Product) Product {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Stock != nil {
		p.Stock = *c.Stock
	}
	return p
}

// HasSufficientStock reports whether quantity units can be taken from p.
func HasSufficientStock(p Product, quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}
