package gormdb

import (
	"context"
	"fmt"
	"time"

	"github.com/SChris-dev/EcoShop-API/infrastructure/messaging"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"

	"go.uber.org/zap"
)

// OutboxRecorder counts relay results; *metrics.ServerMetrics satisfies it.
type OutboxRecorder interface {
	RecordOutbox(result string)
}

type nopOutboxRecorder struct{}

func (nopOutboxRecorder) RecordOutbox(string) {}

// OutboxWorker polls the outbox table and relays events to a publisher.
type OutboxWorker struct {
	repository   *OutboxRepository
	publisher    messaging.Publisher
	recorder     OutboxRecorder
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
}

func NewOutboxWorker(
	repository *OutboxRepository,
	publisher messaging.Publisher,
	pollInterval time.Duration,
	batchSize int,
	maxRetries int,
) (*OutboxWorker, error) {
	if repository == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}

	return &OutboxWorker{
		repository:   repository,
		publisher:    publisher,
		recorder:     nopOutboxRecorder{},
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
	}, nil
}

func (w *OutboxWorker) SetRecorder(r OutboxRecorder) {
	if r != nil {
		w.recorder = r
	}
}

// Run polls until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				logger.Error("Outbox batch processing failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch relays one batch and reports how many events were published.
// Messages are keyed by partition key so one order's events stay in order.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	events, err := w.repository.Pending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		claimed, err := w.repository.Claim(ctx, event.ID)
		if err != nil {
			logger.Warn("Failed to claim outbox event", zap.String("event_id", event.ID), zap.Error(err))
			continue
		}
		if !claimed {
			logger.Debug("Outbox event claimed by another worker", zap.String("event_id", event.ID))
			continue
		}

		msg := messaging.Message{
			ID:      event.ID,
			Key:     event.PartitionKey,
			Type:    event.EventType,
			Payload: []byte(event.Payload),
		}
		if err := w.publisher.Publish(ctx, msg); err != nil {
			w.recorder.RecordOutbox("failed")
			logger.Warn("Outbox publish failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("aggregate", event.PartitionKey),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err),
			)
			if failErr := w.repository.MarkFailed(ctx, event, err, w.maxRetries); failErr != nil {
				logger.Error("Failed to record outbox failure",
					zap.String("event_id", event.ID),
					zap.Error(failErr),
				)
			}
			continue
		}

		if err := w.repository.MarkPublished(ctx, event.ID); err != nil {
			logger.Error("Failed to mark outbox event as published",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		w.recorder.RecordOutbox("published")
		published++
	}

	return published, nil
}
