package shared

// AggregateRoot is the consistency boundary the unit of work collects events from.
type AggregateRoot interface {
	// AggregateID is the identity used as the event key (outbox aggregate_id, Kafka message key).
	AggregateID() string

	// Version is the optimistic lock counter maintained by the persistence layer.
	Version() int

	// PullEvents returns and clears the events recorded since the last pull.
	PullEvents() []DomainEvent
}
