package shared

import "context"

// UnitOfWork manages the transaction boundary and collects aggregate events.
// Repositories called with the ctx handed to fn take part in the same transaction.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(ctx context.Context, aggregate AggregateRoot)
	RegisterDirty(ctx context.Context, aggregate AggregateRoot)
	RegisterRemoved(ctx context.Context, aggregate AggregateRoot)
}

type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
