// Package messaging defines what the outbox worker hands to a broker.
package messaging

import (
	"context"

	"github.com/SChris-dev/EcoShop-API/pkg/logger"

	"go.uber.org/zap"
)

// Message is one relayed outbox row. Key is the partition key, e.g.
// "order-42", so events of one order stay on one partition.
type Message struct {
	ID      string
	Key     string
	Type    string
	Payload []byte
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// LoggingPublisher writes events to the log; used when no broker is configured.
type LoggingPublisher struct{}

func (p *LoggingPublisher) Publish(ctx context.Context, msg Message) error {
	logger.FromContext(ctx).Info("Outbox event published",
		zap.String("event_id", msg.ID),
		zap.String("event_type", msg.Type),
		zap.String("key", msg.Key),
		zap.ByteString("payload", msg.Payload),
	)
	return nil
}
