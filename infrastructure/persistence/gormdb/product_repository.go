package gormdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository implements catalog.Repository and catalog.Inventory.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var productPO po.ProductPO
	if err := r.getDB(ctx).First(&productPO, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.NewProductNotFoundError(id)
		}
		return nil, err
	}
	p := productPO.ToDomain()
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	var productPOs []po.ProductPO
	if err := r.getDB(ctx).Order("id").Find(&productPOs).Error; err != nil {
		return nil, err
	}
	products := make([]*catalog.Product, len(productPOs))
	for i := range productPOs {
		p := productPOs[i].ToDomain()
		products[i] = &p
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	productPO := po.FromProductDomain(p)
	if err := r.getDB(ctx).Create(productPO).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = productPO.ID
	p.CreatedAt = productPO.CreatedAt
	p.UpdatedAt = productPO.UpdatedAt
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, id int64, changes catalog.Changes) error {
	columns := map[string]interface{}{"updated_at": time.Now()}
	if changes.Name != nil {
		columns["name"] = *changes.Name
	}
	if changes.Description != nil {
		columns["description"] = *changes.Description
	}
	if changes.Price != nil {
		columns["price"] = changes.Price.Decimal()
	}
	if changes.Stock != nil {
		columns["stock"] = *changes.Stock
	}

	result := r.getDB(ctx).
		Model(&po.ProductPO{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.NewProductNotFoundError(id)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.getDB(ctx).Where("id = ?", id).Delete(&po.ProductPO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.NewProductNotFoundError(id)
	}
	return nil
}

// LockForUpdate issues SELECT ... FOR UPDATE ordered by id, so two
// transactions locking overlapping sets always queue in the same order.
func (r *ProductRepository) LockForUpdate(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	if persistence.TxFromContext(ctx) == nil {
		return nil, errors.New("LockForUpdate requires a transaction")
	}
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var productPOs []po.ProductPO
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id").
		Find(&productPOs).Error
	if err != nil {
		return nil, err
	}

	locked := make(map[int64]catalog.Product, len(productPOs))
	for i := range productPOs {
		locked[productPOs[i].ID] = productPOs[i].ToDomain()
	}
	return locked, nil
}

// DecrementStock only matches the row while stock >= quantity.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	result := r.getDB(ctx).
		Model(&po.ProductPO{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.NewStockConflictError(id)
	}
	return nil
}

var (
	_ catalog.Repository = (*ProductRepository)(nil)
	_ catalog.Inventory  = (*ProductRepository)(nil)
)
