package catalog

import (
	"context"
	"testing"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = shared.Principal{UserID: 1, IsAdmin: true}
	customer = shared.Principal{UserID: 2}
)

func newService() *ApplicationService {
	store := memory.NewStore(nil)
	store.Seed(persistence.SeedProducts())
	return NewApplicationService(store.Products(), store.Products(), store.UnitOfWork())
}

// orderBeforeWrite commits an order for three units right before each
// product write reaches the store.
type orderBeforeWrite struct {
	*memory.ProductRepository
}

func (r orderBeforeWrite) Update(ctx context.Context, id int64, changes catalog.Changes) error {
	if err := r.ProductRepository.DecrementStock(ctx, id, 3); err != nil {
		return err
	}
	return r.ProductRepository.Update(ctx, id, changes)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func money(v string) *shared.Money {
	m := shared.MustMoney(v)
	return &m
}

func TestListAndGetProducts(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 5)
	assert.Equal(t, "Bamboo Toothbrush", products[0].Name)
	assert.Equal(t, "5.99", products[0].Price.String())

	p, err := svc.GetProduct(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Solar Power Bank", p.Name)
	assert.Equal(t, 30, p.Stock)

	_, err = svc.GetProduct(ctx, 99)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestCreateProduct(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	req := CreateProductRequest{Name: "Compost Bin", Description: "Kitchen compost bin", Price: money("49.5"), Stock: intPtr(10)}

	_, err := svc.CreateProduct(ctx, customer, req)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	created, err := svc.CreateProduct(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.ID)
	assert.Equal(t, "49.50", created.Price.String())

	req.Price = money("-1")
	_, err = svc.CreateProduct(ctx, admin, req)
	assert.ErrorIs(t, err, catalog.ErrInvalidProduct)
}

func TestUpdateProductIsPartial(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.UpdateProduct(ctx, customer, 1, UpdateProductRequest{Stock: intPtr(1)})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.UpdateProduct(ctx, admin, 1, UpdateProductRequest{Stock: intPtr(250)})
	require.NoError(t, err)
	assert.Equal(t, 250, updated.Stock)
	assert.Equal(t, "Bamboo Toothbrush", updated.Name)
	assert.Equal(t, "5.99", updated.Price.String())

	_, err = svc.UpdateProduct(ctx, admin, 1, UpdateProductRequest{Name: strPtr("")})
	assert.ErrorIs(t, err, catalog.ErrInvalidProduct)

	_, err = svc.UpdateProduct(ctx, admin, 99, UpdateProductRequest{Stock: intPtr(1)})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpdateProductKeepsConcurrentOrderStock(t *testing.T) {
	store := memory.NewStore(nil)
	store.Seed([]catalog.Product{{Name: "Bamboo Toothbrush", Price: shared.MustMoney("5.99"), Stock: 5}})
	svc := NewApplicationService(orderBeforeWrite{store.Products()}, store.Products(), store.UnitOfWork())
	ctx := context.Background()

	updated, err := svc.UpdateProduct(ctx, admin, 1, UpdateProductRequest{Name: strPtr("Bamboo Toothbrush (4 pack)")})
	require.NoError(t, err)
	assert.Equal(t, "Bamboo Toothbrush (4 pack)", updated.Name)
	assert.Equal(t, 2, updated.Stock)

	p, err := store.Products().FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}

func TestDeleteProduct(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteProduct(ctx, customer, 1), shared.ErrForbidden)
	require.NoError(t, svc.DeleteProduct(ctx, admin, 1))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, admin, 1), catalog.ErrProductNotFound)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)
}
