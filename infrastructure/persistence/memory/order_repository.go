package memory

import (
	"context"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// OrderRepository implements order.Repository.
type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.s.access(ctx, func() error {
		r.s.nextOrderID++
		rec := orderRecord{
			id:        r.s.nextOrderID,
			userID:    o.UserID(),
			total:     o.TotalAmount(),
			status:    o.Status(),
			version:   o.Version(),
			createdAt: o.CreatedAt(),
			updatedAt: o.UpdatedAt(),
		}

		items := o.Items()
		itemIDs := make([]int64, len(items))
		rec.items = make([]order.ItemReconstructionDTO, len(items))
		for i, item := range items {
			r.s.nextItemID++
			itemIDs[i] = r.s.nextItemID
			rec.items[i] = order.ItemReconstructionDTO{
				ID:          r.s.nextItemID,
				ProductID:   item.ProductID(),
				ProductName: item.ProductName(),
				Quantity:    item.Quantity(),
				Price:       item.Price(),
			}
		}

		r.s.orders[rec.id] = rec
		o.AssignIdentity(rec.id, itemIDs)
		return nil
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var out *order.Order
	err := r.s.access(ctx, func() error {
		rec, ok := r.s.orders[id]
		if !ok {
			return order.NewOrderNotFoundError(id)
		}
		out = rec.toDomain()
		return nil
	})
	return out, err
}

func (r *OrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	var out []*order.Order
	err := r.s.access(ctx, func() error {
		out = make([]*order.Order, 0, len(r.s.orders))
		for _, rec := range r.s.orders {
			o := rec.toDomain()
			if shared.Satisfies(ctx, spec, o) {
				out = append(out, o)
			}
		}
		return nil
	})
	sortOrders(out)
	return out, err
}

// UpdateStatus applies the same version check as the SQL store.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	return r.s.access(ctx, func() error {
		rec, ok := r.s.orders[o.ID()]
		if !ok {
			return order.NewOrderNotFoundError(o.ID())
		}
		if rec.version != o.Version() {
			return order.NewConcurrentModificationError(o.ID())
		}
		rec.status = o.Status()
		rec.version++
		rec.updatedAt = o.UpdatedAt()
		if rec.updatedAt.IsZero() {
			rec.updatedAt = time.Now()
		}
		r.s.orders[o.ID()] = rec
		o.IncrementVersionForSave()
		return nil
	})
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	return r.s.access(ctx, func() error {
		if _, ok := r.s.orders[id]; !ok {
			return order.NewOrderNotFoundError(id)
		}
		delete(r.s.orders, id)
		return nil
	})
}

var _ order.Repository = (*OrderRepository)(nil)
