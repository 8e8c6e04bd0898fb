package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/gormdb/po"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/specification"

	"gorm.io/gorm"
)

// OrderRepository GORM implementation of order.Repository
type OrderRepository struct {
	db         *gorm.DB
	translator *specification.OrderTranslator
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, translator: specification.NewOrderTranslator()}
}

func (r *OrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// inTx uses the unit of work transaction, or opens one for a standalone call.
func (r *OrderRepository) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return fn(tx)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	orderPO, itemPOs := po.FromOrderDomain(o)

	return r.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(orderPO).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range itemPOs {
			itemPOs[i].OrderID = orderPO.ID
		}
		if err := tx.Create(&itemPOs).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		itemIDs := make([]int64, len(itemPOs))
		for i, item := range itemPOs {
			itemIDs[i] = item.ID
		}
		o.AssignIdentity(orderPO.ID, itemIDs)
		o.SetTimestamps(orderPO.CreatedAt, orderPO.UpdatedAt)
		return nil
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	db := r.getDB(ctx)

	var orderPO po.OrderPO
	if err := db.First(&orderPO, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, err
	}

	var itemPOs []po.OrderItemPO
	if err := db.Where("order_id = ?", id).Order("id").Find(&itemPOs).Error; err != nil {
		return nil, err
	}

	return orderPO.ToDomain(itemPOs), nil
}

// FindAll loads matching headers, then every item in one IN query.
func (r *OrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	scope, err := r.translator.Translate(spec)
	if err != nil {
		return nil, err
	}

	db := r.getDB(ctx)
	var orderPOs []po.OrderPO
	if err := db.Scopes(scope).Order("created_at DESC").Order("id DESC").Find(&orderPOs).Error; err != nil {
		return nil, err
	}
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]int64, len(orderPOs))
	for i, o := range orderPOs {
		ids[i] = o.ID
	}
	var itemPOs []po.OrderItemPO
	if err := db.Where("order_id IN ?", ids).Order("id").Find(&itemPOs).Error; err != nil {
		return nil, err
	}

	byOrder := make(map[int64][]po.OrderItemPO, len(orderPOs))
	for _, item := range itemPOs {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	orders := make([]*order.Order, len(orderPOs))
	for i := range orderPOs {
		orders[i] = orderPOs[i].ToDomain(byOrder[orderPOs[i].ID])
	}
	return orders, nil
}

// UpdateStatus writes status with a version check. Zero affected rows means
// another transaction changed the order since it was loaded.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := r.getDB(ctx).
		Model(&po.OrderPO{}).
		Where("id = ? AND version = ?", o.ID(), o.Version()).
		Updates(map[string]interface{}{
			"status":     string(o.Status()),
			"version":    gorm.Expr("version + 1"),
			"updated_at": o.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return order.NewConcurrentModificationError(o.ID())
	}

	o.IncrementVersionForSave()
	return nil
}

// Delete is a hard delete; stock is not restored.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&po.OrderItemPO{}).Error; err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&po.OrderPO{})
		if result.Error != nil {
			return fmt.Errorf("delete order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return order.NewOrderNotFoundError(id)
		}
		return nil
	})
}

var _ order.Repository = (*OrderRepository)(nil)
