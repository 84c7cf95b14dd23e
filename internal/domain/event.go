package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types published to the outbox.
type EventType string

const (
	EventTransactionPosted EventType = "casino.wallet.transaction.posted"
	EventSessionLaunched   EventType = "casino.session.launched"
	EventSessionEnded      EventType = "casino.session.ended"
	EventRollbackTombstone EventType = "casino.rollback.tombstoned"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateWallet  AggregateType = "wallet"
	AggregateSession AggregateType = "session"
)

// OutboxDraft is the payload written to the event_outbox table.
// Columns are camelCase to match the existing event_outbox schema.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
