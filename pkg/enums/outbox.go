package enums

import (
	"fmt"
	"slices"
)

// OutboxAggregateType is the aggregate_type column of outbox_events.
type OutboxAggregateType string

const AggregateOrder OutboxAggregateType = "order"

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateOrder
}

// OutboxEventType is the event_type column; it also selects the payload
// decoder on the consumer side.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
)

var outboxEventTypes = []OutboxEventType{EventOrderCreated, EventOrderStatusChanged}

func (e OutboxEventType) IsValid() bool {
	return slices.Contains(outboxEventTypes, e)
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	if e := OutboxEventType(value); e.IsValid() {
		return e, nil
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason records why a row was dead-lettered.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)
