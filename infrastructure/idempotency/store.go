// Package idempotency remembers which order an Idempotency-Key produced so a
// retried POST replays the first result instead of placing a second order.
//
// A key moves through two states: "pending" while the first request is
// placing the order, then the order id once it committed. A failed placement
// releases the key so the client can retry with it.
package idempotency

import (
	"context"
	"time"
)

const (
	pendingValue = "pending"
	keyPrefix    = "idem:"
)

// DefaultTTL matches how long clients are expected to retry a request.
const DefaultTTL = 24 * time.Hour

type Store interface {
	// Reserve claims key. When the key already maps to a committed order,
	// reserved is false and existingOrderID is set. A key still pending
	// returns order.ErrPlacementInProgress.
	Reserve(ctx context.Context, key string) (existingOrderID int64, reserved bool, err error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}
