package order

import (
	"strconv"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

type OrderPlacedEvent struct {
	orderID     int64
	userID      int64
	totalAmount shared.Money
	itemsCount  int
	occurredOn  time.Time
}

func NewOrderPlacedEvent(orderID, userID int64, totalAmount shared.Money, itemsCount int) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		orderID:     orderID,
		userID:      userID,
		totalAmount: totalAmount,
		itemsCount:  itemsCount,
		occurredOn:  time.Now(),
	}
}

func (e *OrderPlacedEvent) EventName() string         { return EventOrderPlaced }
func (e *OrderPlacedEvent) OccurredOn() time.Time     { return e.occurredOn }
func (e *OrderPlacedEvent) GetAggregateID() string    { return strconv.FormatInt(e.orderID, 10) }
func (e *OrderPlacedEvent) OrderID() int64            { return e.orderID }
func (e *OrderPlacedEvent) UserID() int64             { return e.userID }
func (e *OrderPlacedEvent) TotalAmount() shared.Money { return e.totalAmount }

func (e *OrderPlacedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":     e.orderID,
		"user_id":      e.userID,
		"total_amount": e.totalAmount.String(),
		"items_count":  e.itemsCount,
	}
}

type OrderStatusChangedEvent struct {
	orderID    int64
	from       Status
	to         Status
	occurredOn time.Time
}

func NewOrderStatusChangedEvent(orderID int64, from, to Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		orderID:    orderID,
		from:       from,
		to:         to,
		occurredOn: time.Now(),
	}
}

func (e *OrderStatusChangedEvent) EventName() string      { return EventOrderStatusChanged }
func (e *OrderStatusChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderStatusChangedEvent) GetAggregateID() string { return strconv.FormatInt(e.orderID, 10) }
func (e *OrderStatusChangedEvent) From() Status           { return e.from }
func (e *OrderStatusChangedEvent) To() Status             { return e.to }

func (e *OrderStatusChangedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id": e.orderID,
		"from":     string(e.from),
		"to":       string(e.to),
	}
}

type OrderDeletedEvent struct {
	orderID    int64
	occurredOn time.Time
}

func NewOrderDeletedEvent(orderID int64) *OrderDeletedEvent {
	return &OrderDeletedEvent{orderID: orderID, occurredOn: time.Now()}
}

func (e *OrderDeletedEvent) EventName() string      { return EventOrderDeleted }
func (e *OrderDeletedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderDeletedEvent) GetAggregateID() string { return strconv.FormatInt(e.orderID, 10) }

func (e *OrderDeletedEvent) Payload() map[string]any {
	return map[string]any{"order_id": e.orderID}
}
