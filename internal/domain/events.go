package domain

import "time"

// Event types
const (
	EventTypeStatementCreated = "statement.created"
	EventTypeTransferCreated  = "transfer.created"
)

// Aggregate types
const (
	AggregateTypeStatement = "statement"
	AggregateTypeTransfer  = "transfer"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
