package shared

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DomainEvent is a fact recorded by an aggregate. Payload is what ends up in
// the outbox row and on the wire, so it must be JSON-serialisable.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string
	Payload() map[string]any
}

type EventHandler interface {
	Handle(event DomainEvent) error
	Name() string
}

func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if event.EventName() == "" {
		return errors.New("event name cannot be empty")
	}
	if event.GetAggregateID() == "" {
		return errors.New("aggregate ID cannot be empty")
	}
	if event.OccurredOn().IsZero() {
		return errors.New("occurred on time cannot be zero")
	}
	return nil
}

// EventBus fans events out to in-process subscribers. The in-memory store
// publishes committed events here instead of writing an outbox table.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]EventHandler)}
}

// Publish runs every handler subscribed to the event name, plus wildcard ("*")
// subscribers. Handler failures are joined; all handlers still run.
func (bus *EventBus) Publish(event DomainEvent) error {
	if err := ValidateEvent(event); err != nil {
		return err
	}

	bus.mu.RLock()
	handlers := make([]EventHandler, 0, len(bus.handlers[event.EventName()])+len(bus.handlers["*"]))
	handlers = append(handlers, bus.handlers[event.EventName()]...)
	handlers = append(handlers, bus.handlers["*"]...)
	bus.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler.Handle(event); err != nil {
			errs = append(errs, fmt.Errorf("handler %s: %w", handler.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (bus *EventBus) Subscribe(eventName string, handler EventHandler) error {
	if eventName == "" {
		return errors.New("event name cannot be empty")
	}
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	for _, h := range bus.handlers[eventName] {
		if h.Name() == handler.Name() {
			return fmt.Errorf("handler %s already subscribed to %s", handler.Name(), eventName)
		}
	}
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	return nil
}

type FuncHandler struct {
	name string
	fn   func(DomainEvent) error
}

func NewFuncHandler(name string, fn func(DomainEvent) error) *FuncHandler {
	return &FuncHandler{name: name, fn: fn}
}

func (h *FuncHandler) Handle(event DomainEvent) error { return h.fn(event) }
func (h *FuncHandler) Name() string                   { return h.name }
