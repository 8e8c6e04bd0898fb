package gormdb

import (
	"testing"

	"github.com/SChris-dev/EcoShop-API/domain/order"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	o := newPendingOrder(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `orders`").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO `order_items`").WillReturnResult(sqlmock.NewResult(100, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(bg, o))
	assert.Equal(t, int64(42), o.ID())
	items := o.Items()
	assert.Equal(t, int64(100), items[0].ID())
	assert.Equal(t, int64(101), items[1].ID())

	events := o.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, order.EventOrderPlaced, events[0].EventName())
	assert.Equal(t, "42", events[0].GetAggregateID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CreateRollsBackOnItemFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	o := newPendingOrder(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `orders`").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO `order_items`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(bg, o)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, o.PullEvents())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT \\* FROM `orders`").WillReturnRows(orderRows())
		mock.ExpectQuery("SELECT \\* FROM `order_items` WHERE order_id = \\?").WillReturnRows(orderItemRows())

		o, err := repo.FindByID(bg, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(7), o.UserID())
		assert.Equal(t, order.StatusPending, o.Status())
		assert.Equal(t, "51.97", o.TotalAmount().String())
		require.Equal(t, 2, o.ItemsCount())
		assert.Equal(t, "Solar Power Bank", o.Items()[1].ProductName())
		assert.Equal(t, "39.99", o.Items()[1].Price().String())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT \\* FROM `orders`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(bg, 9)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_FindAllByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `orders` WHERE user_id = \\? ORDER BY created_at DESC,id DESC").
		WithArgs(int64(7)).
		WillReturnRows(orderRows())
	mock.ExpectQuery("SELECT \\* FROM `order_items` WHERE order_id IN \\(\\?\\)").
		WillReturnRows(orderItemRows())

	orders, err := repo.FindAll(bg, order.NewByUserIDSpecification(7))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].ItemsCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	t.Run("Success", func(t *testing.T) {
		o := order.RebuildFromDTO(order.ReconstructionDTO{ID: 42, UserID: 7, Status: order.StatusProcessing, Version: 3})
		mock.ExpectExec("UPDATE `orders` SET .* WHERE id = \\? AND version = \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateStatus(bg, o))
		assert.Equal(t, 4, o.Version())
	})

	t.Run("VersionConflict", func(t *testing.T) {
		o := order.RebuildFromDTO(order.ReconstructionDTO{ID: 42, UserID: 7, Status: order.StatusProcessing, Version: 3})
		mock.ExpectExec("UPDATE `orders` SET").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(bg, o)
		assert.ErrorIs(t, err, order.ErrConcurrentModification)
		assert.Equal(t, 3, o.Version())
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	t.Run("ItemsThenHeader", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `order_items` WHERE order_id = \\?").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM `orders` WHERE id = \\?").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(bg, 42))
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `order_items`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM `orders`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(bg, 9), order.ErrOrderNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
