package order

import (
	"context"
	"errors"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// Committer is the write phase of order placement. Everything it does runs
// in one unit of work: lock the product rows, re-check stock against the
// locked values, insert header and items, decrement stock.
type Committer struct {
	uow       shared.UnitOfWork
	inventory catalog.Inventory
	orders    order.Repository
}

func NewCommitter(uow shared.UnitOfWork, inventory catalog.Inventory, orders order.Repository) *Committer {
	return &Committer{uow: uow, inventory: inventory, orders: orders}
}

// Commit persists draft or changes nothing. A product whose locked stock no
// longer covers the draft fails with StockChanged; storage errors come back
// as StorageFailure.
func (c *Committer) Commit(ctx context.Context, draft order.Draft) (*order.Order, error) {
	var placed *order.Order

	err := c.uow.Execute(ctx, func(ctx context.Context) error {
		placed = nil
		ids := draft.ProductIDs()
		quantities := draft.Quantities()

		locked, err := c.inventory.LockForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p, ok := locked[id]
			if !ok {
				// deleted since validation
				return order.NewStockChangedError(id, draft.ProductName(id), 0, quantities[id])
			}
			if !catalog.HasSufficientStock(p, quantities[id]) {
				return order.NewStockChangedError(id, p.Name, p.Stock, quantities[id])
			}
		}

		o, err := order.NewOrder(draft)
		if err != nil {
			return err
		}
		if err := c.orders.Create(ctx, o); err != nil {
			return err
		}

		for _, id := range ids {
			if err := c.inventory.DecrementStock(ctx, id, quantities[id]); err != nil {
				if errors.Is(err, catalog.ErrInsufficientStock) {
					return order.NewStockChangedError(id, locked[id].Name, locked[id].Stock, quantities[id])
				}
				return err
			}
		}

		c.uow.RegisterNew(ctx, o)
		placed = o
		return nil
	})
	if err != nil {
		return nil, asStorageFailure(err)
	}
	return placed, nil
}

// asStorageFailure keeps business failures as they are and wraps the rest.
func asStorageFailure(err error) error {
	if err == nil || isBusinessError(err) {
		return err
	}
	return order.NewStorageFailureError(err)
}

func isBusinessError(err error) bool {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return true
	}
	return errors.Is(err, order.ErrStockChanged) ||
		errors.Is(err, order.ErrInsufficientStock) ||
		errors.Is(err, order.ErrStorageFailure) ||
		errors.Is(err, order.ErrPlacementInProgress)
}
