package order

import (
	"context"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// Repository Order repository interface. Writes take part in the unit of
// work transaction carried by ctx.
type Repository interface {
	// Create inserts the header, then every item, then calls AssignIdentity.
	Create(ctx context.Context, order *Order) error

	// FindByID loads the header and all items.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindAll returns fully loaded orders matching spec, newest first.
	// A nil spec matches every order.
	FindAll(ctx context.Context, spec shared.Specification[*Order]) ([]*Order, error)

	// UpdateStatus persists the status if the stored version still equals
	// order.Version(); otherwise it returns ErrConcurrentModification.
	UpdateStatus(ctx context.Context, order *Order) error

	// Delete removes the items, then the header.
	Delete(ctx context.Context, id int64) error
}
