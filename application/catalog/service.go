// Package catalog serves product reads to everyone and product management
// to admins. Restocking is an UpdateProduct with a new stock value.
package catalog

import (
	"context"
	"errors"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"

	"go.uber.org/zap"
)

const adminOnly = "Access denied. Only admins can manage products."

type ApplicationService struct {
	products  catalog.Repository
	inventory catalog.Inventory
	uow       shared.UnitOfWork
}

func NewApplicationService(products catalog.Repository, inventory catalog.Inventory, uow shared.UnitOfWork) *ApplicationService {
	return &ApplicationService{products: products, inventory: inventory, uow: uow}
}

func (s *ApplicationService) ListProducts(ctx context.Context) ([]*ProductResponse, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, order.NewStorageFailureError(err)
	}
	out := make([]*ProductResponse, len(products))
	for i, p := range products {
		out[i] = toResponse(p)
	}
	return out, nil
}

func (s *ApplicationService) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, passThrough(err)
	}
	return toResponse(p), nil
}

func (s *ApplicationService) CreateProduct(ctx context.Context, principal shared.Principal, req CreateProductRequest) (*ProductResponse, error) {
	if !principal.IsAdmin {
		return nil, shared.NewForbiddenError("product", adminOnly)
	}

	p := &catalog.Product{Name: req.Name, Description: req.Description}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, order.NewStorageFailureError(err)
	}

	logger.FromContext(ctx).Info("Product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return toResponse(p), nil
}

// UpdateProduct writes only the fields present in req. The row is locked
// first, so a stock write waits for any order commit holding it.
func (s *ApplicationService) UpdateProduct(ctx context.Context, principal shared.Principal, id int64, req UpdateProductRequest) (*ProductResponse, error) {
	if !principal.IsAdmin {
		return nil, shared.NewForbiddenError("product", adminOnly)
	}

	changes := catalog.Changes{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}

	var updated *catalog.Product
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		locked, err := s.inventory.LockForUpdate(ctx, []int64{id})
		if err != nil {
			return err
		}
		current, ok := locked[id]
		if !ok {
			return catalog.NewProductNotFoundError(id)
		}
		if err := changes.Apply(current).Validate(); err != nil {
			return err
		}
		if err := s.products.Update(ctx, id, changes); err != nil {
			return err
		}
		updated, err = s.products.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, passThrough(err)
	}

	logger.FromContext(ctx).Info("Product updated", zap.Int64("product_id", id), zap.Bool("stock_set", req.Stock != nil))
	return toResponse(updated), nil
}

// DeleteProduct removes the product. Existing orders keep their name and
// price snapshots.
func (s *ApplicationService) DeleteProduct(ctx context.Context, principal shared.Principal, id int64) error {
	if !principal.IsAdmin {
		return shared.NewForbiddenError("product", adminOnly)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return passThrough(err)
	}
	logger.FromContext(ctx).Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

func passThrough(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return order.NewStorageFailureError(err)
}

func toResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
