package gormdb

import (
	"context"
	"testing"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()
	draft := order.Draft{
		UserID: 7,
		Status: order.StatusPending,
		Lines: []order.DraftLine{
			{ProductID: 1, ProductName: "Bamboo Toothbrush", Quantity: 2, Price: shared.MustMoney("5.99")},
			{ProductID: 4, ProductName: "Solar Power Bank", Quantity: 1, Price: shared.MustMoney("39.99")},
		},
		TotalAmount: shared.MustMoney("51.97"),
	}
	o, err := order.NewOrder(draft)
	require.NoError(t, err)
	return o
}

func orderRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "status", "total_amount", "version", "created_at", "updated_at"}).
		AddRow(42, 7, "pending", "51.97", 0, now, now)
}

func orderItemRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "quantity", "price", "created_at"}).
		AddRow(100, 42, 1, "Bamboo Toothbrush", 2, "5.99", now).
		AddRow(101, 42, 4, "Solar Power Bank", 1, "39.99", now)
}

var bg = context.Background()
