package order

import (
	"context"
	"errors"
	"testing"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	products map[int64]catalog.Product
	calls    int
	err      error
}

func (f *stubFinder) FindByID(_ context.Context, id int64) (*catalog.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.NewProductNotFoundError(id)
	}
	return &p, nil
}

func newFinder(products ...catalog.Product) *stubFinder {
	f := &stubFinder{products: make(map[int64]catalog.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func TestValidateStock(t *testing.T) {
	ctx := context.Background()
	p := catalog.Product{ID: 1, Name: "Bamboo Toothbrush", Price: shared.MustMoney("10.00"), Stock: 5}

	t.Run("sufficient stock", func(t *testing.T) {
		lines, err := ValidateStock(ctx, newFinder(p), []LineRequest{{ProductID: 1, Quantity: 3}})
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 5, lines[0].Product.Stock)
		assert.Equal(t, 3, lines[0].Quantity)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		low := p
		low.Stock = 2
		_, err := ValidateStock(ctx, newFinder(low), []LineRequest{{ProductID: 1, Quantity: 3}})
		require.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, "Insufficient stock for product: Bamboo Toothbrush. Available: 2, Requested: 3", err.Error())

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, int64(1), stockErr.ProductID)
		assert.Equal(t, 2, stockErr.Available)
		assert.Equal(t, 3, stockErr.Requested)
	})

	t.Run("duplicate lines are summed", func(t *testing.T) {
		three := p
		three.Stock = 3
		finder := newFinder(three)
		_, err := ValidateStock(ctx, finder, []LineRequest{{ProductID: 1, Quantity: 2}, {ProductID: 1, Quantity: 2}})
		require.ErrorIs(t, err, ErrInsufficientStock)
		assert.Contains(t, err.Error(), "Available: 3, Requested: 4")
		assert.Equal(t, 1, finder.calls)
	})

	t.Run("duplicate lines within stock keep one line each", func(t *testing.T) {
		lines, err := ValidateStock(ctx, newFinder(p), []LineRequest{{ProductID: 1, Quantity: 2}, {ProductID: 1, Quantity: 3}})
		require.NoError(t, err)
		assert.Len(t, lines, 2)
		assert.Equal(t, 1, lines[1].Index)
	})

	t.Run("unknown product names the line", func(t *testing.T) {
		_, err := ValidateStock(ctx, newFinder(p), []LineRequest{{ProductID: 1, Quantity: 1}, {ProductID: 99, Quantity: 1}})
		require.ErrorIs(t, err, ErrProductNotFound)

		var fe shared.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "items.1.product_id", fe.FieldName())
	})

	t.Run("empty and zero quantity", func(t *testing.T) {
		_, err := ValidateStock(ctx, newFinder(p), nil)
		assert.ErrorIs(t, err, ErrEmptyOrderItems)

		_, err = ValidateStock(ctx, newFinder(p), []LineRequest{{ProductID: 1, Quantity: 0}})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("storage errors pass through", func(t *testing.T) {
		boom := errors.New("connection reset")
		_, err := ValidateStock(ctx, &stubFinder{err: boom}, []LineRequest{{ProductID: 1, Quantity: 1}})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrProductNotFound)
	})
}

func TestAssemble(t *testing.T) {
	lines := []ValidatedLine{
		{Index: 0, Product: catalog.Product{ID: 2, Name: "Tote", Price: shared.MustMoney("12.99")}, Quantity: 3},
		{Index: 1, Product: catalog.Product{ID: 1, Name: "Wraps", Price: shared.MustMoney("18.99")}, Quantity: 1},
		{Index: 2, Product: catalog.Product{ID: 2, Name: "Tote", Price: shared.MustMoney("12.99")}, Quantity: 1},
	}

	draft := Assemble(7, lines)
	assert.Equal(t, int64(7), draft.UserID)
	assert.Equal(t, StatusPending, draft.Status)
	require.Len(t, draft.Lines, 3)
	assert.Equal(t, "38.97", draft.Lines[0].Total().String())
	assert.Equal(t, "70.95", draft.TotalAmount.String())
	assert.Equal(t, map[int64]int{1: 1, 2: 4}, draft.Quantities())
	assert.Equal(t, []int64{1, 2}, draft.ProductIDs())
	assert.Equal(t, "Wraps", draft.ProductName(1))
}
