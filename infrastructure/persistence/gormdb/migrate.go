package gormdb

import (
	"context"
	"fmt"

	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/gormdb/po"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table this service owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&po.ProductPO{}, &po.OrderPO{}, &po.OrderItemPO{}, &po.OutboxEventPO{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts the starter catalog when the products table is empty.
func Seed(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&po.ProductPO{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		logger.Info("Seed skipped, products already present", zap.Int64("count", count))
		return nil
	}

	products := persistence.SeedProducts()
	rows := make([]*po.ProductPO, len(products))
	for i := range products {
		rows[i] = po.FromProductDomain(&products[i])
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	logger.Info("Seeded products", zap.Int("count", len(rows)))
	return nil
}
