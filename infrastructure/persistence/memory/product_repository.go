package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
)

// ProductRepository implements catalog.Repository and catalog.Inventory.
type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var out *catalog.Product
	err := r.s.access(ctx, func() error {
		p, ok := r.s.products[id]
		if !ok {
			return catalog.NewProductNotFoundError(id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	var out []*catalog.Product
	err := r.s.access(ctx, func() error {
		out = make([]*catalog.Product, 0, len(r.s.products))
		for _, p := range r.s.products {
			p := p
			out = append(out, &p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return r.s.access(ctx, func() error {
		r.s.nextProductID++
		now := time.Now()
		p.ID = r.s.nextProductID
		p.CreatedAt, p.UpdatedAt = now, now
		r.s.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepository) Update(ctx context.Context, id int64, changes catalog.Changes) error {
	return r.s.access(ctx, func() error {
		current, ok := r.s.products[id]
		if !ok {
			return catalog.NewProductNotFoundError(id)
		}
		updated := changes.Apply(current)
		updated.UpdatedAt = time.Now()
		r.s.products[id] = updated
		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return r.s.access(ctx, func() error {
		if _, ok := r.s.products[id]; !ok {
			return catalog.NewProductNotFoundError(id)
		}
		delete(r.s.products, id)
		return nil
	})
}

// LockForUpdate only works inside a unit of work, which already holds the
// store lock; ids that do not exist are left out of the result.
func (r *ProductRepository) LockForUpdate(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	if !inTx(ctx) {
		return nil, errors.New("LockForUpdate requires a transaction")
	}
	locked := make(map[int64]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			locked[id] = p
		}
	}
	return locked, nil
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	return r.s.access(ctx, func() error {
		p, ok := r.s.products[id]
		if !ok || p.Stock < quantity {
			return catalog.NewStockConflictError(id)
		}
		p.Stock -= quantity
		p.UpdatedAt = time.Now()
		r.s.products[id] = p
		return nil
	})
}

var (
	_ catalog.Repository = (*ProductRepository)(nil)
	_ catalog.Inventory  = (*ProductRepository)(nil)
)
