package catalog

import "context"

// Repository is the catalog store.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	// Create assigns ID and timestamps on p.
	Create(ctx context.Context, p *Product) error
	// Update writes only the fields present in changes. A write that sets
	// Stock must run in a UnitOfWork after LockForUpdate on the same row.
	Update(ctx context.Context, id int64, changes Changes) error
	Delete(ctx context.Context, id int64) error
}

// Inventory is the write side of stock. Both methods must run inside a
// UnitOfWork transaction.
type Inventory interface {
	// LockForUpdate row-locks the products in ascending id order and returns
	// their current state. Missing ids are absent from the map.
	LockForUpdate(ctx context.Context, ids []int64) (map[int64]Product, error)

	// DecrementStock subtracts quantity only if enough stock remains;
	// otherwise it returns an error matching ErrInsufficientStock.
	DecrementStock(ctx context.Context, id int64, quantity int) error
}
