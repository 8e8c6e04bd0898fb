package gormdb

import (
	"context"
	"fmt"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/retry"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type collectorKey struct{}

// collector holds the aggregates registered during one transaction attempt.
type collector struct {
	aggregates []shared.AggregateRoot
}

// UnitOfWork implements shared.UnitOfWork with GORM. Registered aggregates
// live in the transaction's ctx, so one instance serves concurrent requests.
type UnitOfWork struct {
	db               *gorm.DB
	outboxRepository *OutboxRepository
	retryConfig      retry.Config
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		db:               db,
		outboxRepository: NewOutboxRepository(db),
		retryConfig:      retry.DefaultConfig,
	}
}

func (u *UnitOfWork) SetRetryConfig(config retry.Config) {
	u.retryConfig = config
}

// Execute runs fn in a transaction. Events of registered aggregates are
// written to the outbox before commit. Transient failures (deadlock, lock
// wait timeout, optimistic conflict) re-run the whole of fn. A ctx that
// already carries a transaction joins it instead.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if persistence.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	executeOnce := func(ctx context.Context) error {
		tx := u.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("failed to begin transaction: %w", tx.Error)
		}
		// A panic in fn must not leave the connection holding row locks.
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
				panic(r)
			}
		}()

		col := &collector{}
		txCtx := context.WithValue(persistence.ContextWithTx(ctx, tx), collectorKey{}, col)

		if err := fn(txCtx); err != nil {
			tx.Rollback()
			return err
		}

		for _, agg := range col.aggregates {
			for _, event := range agg.PullEvents() {
				if err := u.outboxRepository.SaveEvent(txCtx, event); err != nil {
					tx.Rollback()
					return fmt.Errorf("failed to save event to outbox: %w", err)
				}
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

func (u *UnitOfWork) register(ctx context.Context, aggregate shared.AggregateRoot) {
	col, ok := ctx.Value(collectorKey{}).(*collector)
	if !ok {
		logger.FromContext(ctx).Warn("Aggregate registered outside a unit of work, events dropped",
			zap.String("aggregate_id", aggregate.AggregateID()))
		return
	}
	col.aggregates = append(col.aggregates, aggregate)
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

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
