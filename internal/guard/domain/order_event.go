// Package domain defines the core types for order gatekeeping: lifecycle
// events, order snapshots, and rule evaluation results.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the terminal outcome recorded for an order.
type EventType string

const (
	// EventOrderConfirmed records a successful fulfillment confirmation.
	EventOrderConfirmed EventType = "order_confirmed"
	// EventOrderHeld records an order left unconfirmed after a rule violation.
	EventOrderHeld EventType = "order_held"
	// EventError records a processing failure; the order stays in its prior state.
	EventError EventType = "error"
)

// SentinelOrderID is recorded when the webhook payload carries no usable
// order id, so the failure still leaves an auditable trail.
const SentinelOrderID int64 = 0

// OrderEvent is an immutable fact about an order decision. At most one event
// exists per (PrintfulOrderID, EventType) pair; duplicate webhook deliveries
// must not produce duplicate rows. Events are never updated or deleted by the
// webhook subsystem.
type OrderEvent struct {
	ID              uuid.UUID
	PrintfulOrderID int64
	EventType       EventType
	ProductionCost  *float64
	RetailTotal     *float64
	ItemCount       *int
	RuleViolated    *string
	RawPayload      []byte
	CreatedAt       time.Time
}

// NewOrderEvent creates an OrderEvent with a fresh UUIDv7 id and the current
// UTC timestamp.
func NewOrderEvent(printfulOrderID int64, eventType EventType) *OrderEvent {
	return &OrderEvent{
		ID:              uuid.Must(uuid.NewV7()),
		PrintfulOrderID: printfulOrderID,
		EventType:       eventType,
		CreatedAt:       time.Now().UTC(),
	}
}

// WithCosts sets the monetary and item-count columns.
func (e *OrderEvent) WithCosts(productionCost, retailTotal float64, itemCount int) *OrderEvent {
	e.ProductionCost = &productionCost
	e.RetailTotal = &retailTotal
	e.ItemCount = &itemCount
	return e
}

// WithRuleViolated sets the violated rule name (or error text for error events).
func (e *OrderEvent) WithRuleViolated(rule string) *OrderEvent {
	e.RuleViolated = &rule
	return e
}

// WithRawPayload attaches the original webhook payload for auditing.
func (e *OrderEvent) WithRawPayload(payload []byte) *OrderEvent {
	e.RawPayload = payload
	return e
}
