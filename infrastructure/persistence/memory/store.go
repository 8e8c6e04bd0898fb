// Package memory is a process-local store used for development, demos and
// tests. A transaction holds the store lock from begin to commit, so
// transactions are fully serialised; a failed transaction restores the
// snapshot taken when it began.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"

	"go.uber.org/zap"
)

type txKey struct{}

// txState is the per-transaction collector carried in ctx.
type txState struct {
	aggregates []shared.AggregateRoot
}

type orderRecord struct {
	id        int64
	userID    int64
	items     []order.ItemReconstructionDTO
	total     shared.Money
	status    order.Status
	version   int
	createdAt time.Time
	updatedAt time.Time
}

type Store struct {
	mu sync.Mutex

	products map[int64]catalog.Product
	orders   map[int64]orderRecord

	nextProductID int64
	nextOrderID   int64
	nextItemID    int64

	bus *shared.EventBus
}

// NewStore returns an empty store. Committed events go to bus when it is not nil.
func NewStore(bus *shared.EventBus) *Store {
	return &Store{
		products: make(map[int64]catalog.Product),
		orders:   make(map[int64]orderRecord),
		bus:      bus,
	}
}

// Seed inserts products with fresh ids.
func (s *Store) Seed(products []catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, p := range products {
		s.nextProductID++
		p.ID = s.nextProductID
		p.CreatedAt, p.UpdatedAt = now, now
		s.products[p.ID] = p
	}
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }
func (s *Store) Orders() *OrderRepository     { return &OrderRepository{s: s} }
func (s *Store) UnitOfWork() *UnitOfWork      { return &UnitOfWork{s: s} }

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

// access runs fn under the store lock unless ctx already owns it.
func (s *Store) access(ctx context.Context, fn func() error) error {
	if inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	products      map[int64]catalog.Product
	orders        map[int64]orderRecord
	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		products:      make(map[int64]catalog.Product, len(s.products)),
		orders:        make(map[int64]orderRecord, len(s.orders)),
		nextProductID: s.nextProductID,
		nextOrderID:   s.nextOrderID,
		nextItemID:    s.nextItemID,
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.orders = snap.orders
	s.nextProductID = snap.nextProductID
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
}

func (r orderRecord) toDomain() *order.Order {
	items := make([]order.Item, len(r.items))
	for i, it := range r.items {
		items[i] = order.RebuildItemFromDTO(it)
	}
	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:          r.id,
		UserID:      r.userID,
		Items:       items,
		TotalAmount: r.total,
		Status:      r.status,
		Version:     r.version,
		CreatedAt:   r.createdAt,
		UpdatedAt:   r.updatedAt,
	})
}

// UnitOfWork implements shared.UnitOfWork over the store.
type UnitOfWork struct {
	s *Store
}

// Execute holds the store lock for the whole of fn. Nested calls join the
// outer transaction.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	state := &txState{}
	txCtx := context.WithValue(ctx, txKey{}, state)

	if err := u.run(txCtx, fn); err != nil {
		return err
	}
	u.publish(ctx, state)
	return nil
}

// run restores the snapshot unless fn returns nil, including when fn panics.
func (u *UnitOfWork) run(ctx context.Context, fn func(ctx context.Context) error) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	snap := u.s.snapshot()
	committed := false
	defer func() {
		if !committed {
			u.s.restore(snap)
		}
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (u *UnitOfWork) publish(ctx context.Context, state *txState) {
	for _, agg := range state.aggregates {
		for _, event := range agg.PullEvents() {
			if u.s.bus == nil {
				continue
			}
			if err := u.s.bus.Publish(event); err != nil {
				logger.FromContext(ctx).Warn("Event handler failed",
					zap.String("event", event.EventName()),
					zap.String("aggregate_id", event.GetAggregateID()),
					zap.Error(err),
				)
			}
		}
	}
}

func (u *UnitOfWork) register(ctx context.Context, aggregate shared.AggregateRoot) {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		logger.FromContext(ctx).Warn("Aggregate registered outside a unit of work, events dropped",
			zap.String("aggregate_id", aggregate.AggregateID()))
		return
	}
	state.aggregates = append(state.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterNew(ctx context.Context, aggregate shared.AggregateRoot) {
	u.register(ctx, aggregate)
}

func (u *UnitOfWork) RegisterDirty(ctx context.Context, aggregate shared.AggregateRoot) {
	u.register(ctx, aggregate)
}

func (u *UnitOfWork) RegisterRemoved(ctx context.Context, aggregate shared.AggregateRoot) {
	u.register(ctx, aggregate)
}

func sortOrders(orders []*order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt().Equal(orders[j].CreatedAt()) {
			return orders[i].CreatedAt().After(orders[j].CreatedAt())
		}
		return orders[i].ID() > orders[j].ID()
	})
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
