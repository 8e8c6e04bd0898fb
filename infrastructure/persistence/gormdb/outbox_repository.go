package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

const maxLastErrorLen = 512

var errOutboxNeedsTx = errors.New("order events must be saved inside a unit of work")

// OutboxRepository keeps order events in outbox_events until the worker has
// relayed them.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// SaveEvent inserts event with the transaction carried by ctx and fails
// without one.
func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	tx := persistence.TxFromContext(ctx)
	if tx == nil {
		return errOutboxNeedsTx
	}
	if err := shared.ValidateEvent(event); err != nil {
		return fmt.Errorf("invalid domain event: %w", err)
	}

	row, err := po.NewOutboxEvent(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", event.EventName(), err)
	}
	return tx.Create(row).Error
}

// Pending returns up to limit unclaimed events, oldest first.
func (r *OutboxRepository) Pending(ctx context.Context, limit int) ([]*po.OutboxEventPO, error) {
	var rows []*po.OutboxEventPO
	err := r.db.WithContext(ctx).
		Where("status = ?", po.OutboxPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending events: %w", err)
	}
	return rows, nil
}

// Claim moves a pending event to PROCESSING. It reports false when another
// worker got there first.
func (r *OutboxRepository) Claim(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&po.OutboxEventPO{}).
		Where("id = ? AND status = ?", id, po.OutboxPending).
		Updates(map[string]any{
			"status":     po.OutboxProcessing,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&po.OutboxEventPO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       po.OutboxPublished,
			"published_at": now,
			"updated_at":   now,
		}).Error
}

// MarkFailed records a failed publish. The event goes back to PENDING until
// it has been tried maxAttempts times, then it is parked as FAILED.
func (r *OutboxRepository) MarkFailed(ctx context.Context, event *po.OutboxEventPO, cause error, maxAttempts int) error {
	attempts := event.Attempts + 1
	status := po.OutboxPending
	if attempts >= maxAttempts {
		status = po.OutboxFailed
	}

	lastError := cause.Error()
	if len(lastError) > maxLastErrorLen {
		lastError = lastError[:maxLastErrorLen]
	}

	return r.db.WithContext(ctx).Model(&po.OutboxEventPO{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"attempts":   attempts,
			"last_error": lastError,
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

var _ shared.OutboxRepository = (*OutboxRepository)(nil)
