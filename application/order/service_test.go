package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/infrastructure/idempotency"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/memory"
	"github.com/SChris-dev/EcoShop-API/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = shared.Principal{UserID: 2}
	bob   = shared.Principal{UserID: 3}
	admin = shared.Principal{UserID: 1, IsAdmin: true}
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordPlacement(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[outcome]++
}

type fixture struct {
	store    *memory.Store
	svc      *ApplicationService
	recorder *countingRecorder
}

// newFixture seeds products with ids 1..n in the given order.
func newFixture(t *testing.T, products ...catalog.Product) *fixture {
	t.Helper()
	store := memory.NewStore(nil)
	store.Seed(products)
	svc := NewApplicationService(store.Products(), store.Products(), store.Orders(), store.UnitOfWork())
	rec := &countingRecorder{}
	svc.SetRecorder(rec)
	return &fixture{store: store, svc: svc, recorder: rec}
}

func product(name, price string, stock int) catalog.Product {
	return catalog.Product{Name: name, Price: shared.MustMoney(price), Stock: stock}
}

func items(pairs ...int) PlaceOrderRequest {
	req := PlaceOrderRequest{}
	for i := 0; i+1 < len(pairs); i += 2 {
		req.Items = append(req.Items, LineItemRequest{ProductID: int64(pairs[i]), Quantity: pairs[i+1]})
	}
	return req
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	all, err := f.store.Orders().FindAll(context.Background(), nil)
	require.NoError(t, err)
	return len(all)
}

func TestPlaceOrder_DecrementsStockAndTotals(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))

	res, err := f.svc.PlaceOrder(context.Background(), alice, items(1, 3), "")
	require.NoError(t, err)

	o := res.Order
	assert.False(t, res.Replayed)
	assert.Equal(t, "30.00", o.TotalAmount.String())
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, alice.UserID, o.UserID)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, "Widget", o.OrderItems[0].ProductName)
	assert.Equal(t, "10.00", o.OrderItems[0].Price.String())
	assert.Equal(t, "30.00", o.OrderItems[0].TotalPrice.String())
	assert.Equal(t, 1, o.ItemsCount)
	assert.NotZero(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())

	assert.Equal(t, 2, f.stock(t, 1))
	assert.Equal(t, 1, f.recorder.counts[metrics.OutcomeCreated])
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 2))

	_, err := f.svc.PlaceOrder(context.Background(), alice, items(1, 3), "")
	require.ErrorIs(t, err, order.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for product: Widget. Available: 2, Requested: 3", err.Error())

	assert.Equal(t, 2, f.stock(t, 1))
	assert.Zero(t, f.orderCount(t))
	assert.Equal(t, 1, f.recorder.counts[metrics.OutcomeInsufficientStock])
}

func TestPlaceOrder_DuplicateLinesAreAggregated(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 3))

	_, err := f.svc.PlaceOrder(context.Background(), alice, items(1, 2, 1, 2), "")
	require.ErrorIs(t, err, order.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Available: 3, Requested: 4")
	assert.Equal(t, 3, f.stock(t, 1))
	assert.Zero(t, f.orderCount(t))

	res, err := f.svc.PlaceOrder(context.Background(), alice, items(1, 1, 1, 2), "")
	require.NoError(t, err)
	assert.Len(t, res.Order.OrderItems, 2, "one item per request line")
	assert.Equal(t, 0, f.stock(t, 1))
}

func TestPlaceOrder_UnknownProductNamesLine(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 3))

	_, err := f.svc.PlaceOrder(context.Background(), alice, items(1, 1, 99, 1), "")
	require.ErrorIs(t, err, order.ErrProductNotFound)

	var fe shared.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "items.1.product_id", fe.FieldName())
	assert.Equal(t, 3, f.stock(t, 1))
	assert.Equal(t, 1, f.recorder.counts[metrics.OutcomeValidationFailed])
}

func TestPlaceOrder_TotalIsExactAcrossLines(t *testing.T) {
	f := newFixture(t,
		product("Bamboo Toothbrush", "5.99", 100),
		product("Reusable Water Bottle", "24.99", 50),
		product("Beeswax Food Wraps", "18.99", 60),
	)

	res, err := f.svc.PlaceOrder(context.Background(), alice, items(1, 7, 2, 3, 3, 1), "")
	require.NoError(t, err)

	sum := shared.Money{}
	for _, item := range res.Order.OrderItems {
		sum = sum.Add(item.Price.Multiply(item.Quantity))
	}
	assert.Equal(t, "135.89", res.Order.TotalAmount.String())
	assert.True(t, sum.Equals(res.Order.TotalAmount))
}

func TestPlaceOrder_ConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))

	const buyers = 10
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceOrder(context.Background(), shared.Principal{UserID: int64(i + 10)}, items(1, 3), "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, order.ErrInsufficientStock) || errors.Is(err, order.ErrStockChanged), err.Error())
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, f.stock(t, 1))
	assert.Equal(t, 1, f.orderCount(t))
}

func TestPlaceOrder_PriceSnapshot(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))
	ctx := context.Background()

	res, err := f.svc.PlaceOrder(ctx, alice, items(1, 2), "")
	require.NoError(t, err)

	price := shared.MustMoney("99.00")
	require.NoError(t, f.store.Products().Update(ctx, 1, catalog.Changes{Price: &price}))

	got, err := f.svc.GetOrder(ctx, alice, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.OrderItems[0].Price.String())
	assert.Equal(t, "20.00", got.TotalAmount.String())
}

func TestPlaceOrder_Idempotency(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))
	f.svc.SetIdempotencyStore(idempotency.NewMemoryStore(0))
	ctx := context.Background()

	first, err := f.svc.PlaceOrder(ctx, alice, items(1, 2), "key-1")
	require.NoError(t, err)
	again, err := f.svc.PlaceOrder(ctx, alice, items(1, 2), "key-1")
	require.NoError(t, err)

	assert.True(t, again.Replayed)
	assert.Equal(t, first.Order.ID, again.Order.ID)
	assert.Equal(t, 3, f.stock(t, 1))
	assert.Equal(t, 1, f.recorder.counts[metrics.OutcomeReplayed])

	// same key, different user: independent
	other, err := f.svc.PlaceOrder(ctx, bob, items(1, 1), "key-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Order.ID, other.Order.ID)
}

func TestPlaceOrder_FailedPlacementReleasesKey(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 1))
	f.svc.SetIdempotencyStore(idempotency.NewMemoryStore(0))
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, alice, items(1, 2), "key-2")
	require.ErrorIs(t, err, order.ErrInsufficientStock)

	restock := 10
	require.NoError(t, f.store.Products().Update(ctx, 1, catalog.Changes{Stock: &restock}))

	res, err := f.svc.PlaceOrder(ctx, alice, items(1, 2), "key-2")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
}

func TestPlaceOrder_KeyInProgress(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))
	store := idempotency.NewMemoryStore(0)
	f.svc.SetIdempotencyStore(store)
	ctx := context.Background()

	_, reserved, err := store.Reserve(ctx, "order:create:2:busy")
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = f.svc.PlaceOrder(ctx, alice, items(1, 1), "busy")
	assert.ErrorIs(t, err, order.ErrPlacementInProgress)
	assert.Equal(t, 5, f.stock(t, 1))
}

func TestGetOrder_Access(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))
	ctx := context.Background()

	res, err := f.svc.PlaceOrder(ctx, alice, items(1, 1), "")
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, bob, res.Order.ID)
	require.ErrorIs(t, err, order.ErrAccessDenied)
	assert.Equal(t, "Access denied. You can only view your own orders.", err.Error())

	got, err := f.svc.GetOrder(ctx, admin, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, got.ID)

	_, err = f.svc.GetOrder(ctx, alice, 999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestListOrders_Scoping(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 50))
	ctx := context.Background()

	for _, p := range []shared.Principal{alice, bob, alice} {
		_, err := f.svc.PlaceOrder(ctx, p, items(1, 1), "")
		require.NoError(t, err)
	}

	mine, err := f.svc.ListOrders(ctx, alice, ListOrdersFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, alice.UserID, o.UserID)
	}

	// a user cannot widen the scope with user_id
	scoped, err := f.svc.ListOrders(ctx, alice, ListOrdersFilter{UserID: bob.UserID})
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	all, err := f.svc.ListOrders(ctx, admin, ListOrdersFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bobs, err := f.svc.ListOrders(ctx, admin, ListOrdersFilter{UserID: bob.UserID})
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	_, err = f.svc.UpdateOrderStatus(ctx, admin, all[0].ID, UpdateOrderStatusRequest{Status: "processing"})
	require.NoError(t, err)
	processing, err := f.svc.ListOrders(ctx, admin, ListOrdersFilter{Status: "processing"})
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, all[0].ID, processing[0].ID)

	_, err = f.svc.ListOrders(ctx, admin, ListOrdersFilter{Status: "shipped"})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))
	ctx := context.Background()

	res, err := f.svc.PlaceOrder(ctx, alice, items(1, 1), "")
	require.NoError(t, err)
	id := res.Order.ID

	_, err = f.svc.UpdateOrderStatus(ctx, alice, id, UpdateOrderStatusRequest{Status: "processing"})
	require.ErrorIs(t, err, order.ErrAccessDenied)
	assert.Equal(t, "Access denied. Only admins can update orders.", err.Error())

	updated, err := f.svc.UpdateOrderStatus(ctx, admin, id, UpdateOrderStatusRequest{Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, "processing", updated.Status)

	same, err := f.svc.UpdateOrderStatus(ctx, admin, id, UpdateOrderStatusRequest{Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, "processing", same.Status)

	_, err = f.svc.UpdateOrderStatus(ctx, admin, id, UpdateOrderStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, order.ErrInvalidOrderState)

	_, err = f.svc.UpdateOrderStatus(ctx, admin, id, UpdateOrderStatusRequest{Status: "completed"})
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderStatus(ctx, admin, id, UpdateOrderStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, order.ErrInvalidOrderState, "completed is terminal")

	_, err = f.svc.UpdateOrderStatus(ctx, admin, 999, UpdateOrderStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))
	ctx := context.Background()

	res, err := f.svc.PlaceOrder(ctx, alice, items(1, 2), "")
	require.NoError(t, err)

	err = f.svc.DeleteOrder(ctx, alice, res.Order.ID)
	require.ErrorIs(t, err, order.ErrAccessDenied)
	assert.Equal(t, "Access denied. Only admins can delete orders.", err.Error())

	require.NoError(t, f.svc.DeleteOrder(ctx, admin, res.Order.ID))
	_, err = f.svc.GetOrder(ctx, admin, res.Order.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Equal(t, 3, f.stock(t, 1), "stock is not restored")

	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, admin, res.Order.ID), order.ErrOrderNotFound)
}

func TestPlaceOrder_RequiresPrincipal(t *testing.T) {
	f := newFixture(t, product("Widget", "10.00", 5))
	_, err := f.svc.PlaceOrder(context.Background(), shared.Principal{}, items(1, 1), "")
	assert.ErrorIs(t, err, order.ErrAccessDenied)
}
