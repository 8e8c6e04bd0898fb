package po

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/shared"

	"github.com/google/uuid"
)

// OutboxEventPO is an order event waiting to be relayed to the broker. It is
// inserted in the transaction that changed the order, so a rolled back
// placement never produces an event.
type OutboxEventPO struct {
	ID            string     `gorm:"primaryKey;size:36"`
	AggregateType string     `gorm:"size:32;not null"`
	AggregateID   string     `gorm:"size:64;index;not null"`
	PartitionKey  string     `gorm:"size:100;not null"`
	EventType     string     `gorm:"size:64;not null"`
	Payload       string     `gorm:"type:text;not null"`
	Status        string     `gorm:"size:16;not null;index:idx_outbox_status_created,priority:1"`
	Attempts      int        `gorm:"not null;default:0"`
	LastError     string     `gorm:"size:512"`
	OccurredAt    time.Time  `gorm:"not null"`
	PublishedAt   *time.Time
	CreatedAt     time.Time `gorm:"index:idx_outbox_status_created,priority:2"`
	UpdatedAt     time.Time
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

// Relay states. PROCESSING rows are claimed by exactly one worker.
const (
	OutboxPending    = "PENDING"
	OutboxProcessing = "PROCESSING"
	OutboxPublished  = "PUBLISHED"
	OutboxFailed     = "FAILED"
)

// NewOutboxEvent builds the row for event. "order.placed" on order 42 gets
// aggregate type "order" and partition key "order-42".
func NewOutboxEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	aggregateType := event.EventName()
	if i := strings.IndexByte(aggregateType, '.'); i > 0 {
		aggregateType = aggregateType[:i]
	}
	occurredAt := event.OccurredOn().UTC()

	payload, err := json.Marshal(map[string]any{
		"event_name":     event.EventName(),
		"aggregate_type": aggregateType,
		"aggregate_id":   event.GetAggregateID(),
		"occurred_on":    occurredAt,
		"data":           event.Payload(),
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEventPO{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   event.GetAggregateID(),
		PartitionKey:  aggregateType + "-" + event.GetAggregateID(),
		EventType:     event.EventName(),
		Payload:       string(payload),
		Status:        OutboxPending,
		OccurredAt:    occurredAt,
	}, nil
}
