// Package usecase orchestrates order gatekeeping: rule evaluation, event
// persistence, fulfillment confirmation, and operator notification.
package usecase

import (
	"context"
	"time"

	"github.com/allisson/order-guard/internal/fulfillment"
	"github.com/allisson/order-guard/internal/guard/domain"
)

// Outcome classifies the terminal result of one processing pass.
type Outcome string

const (
	// OutcomeConfirmed means the order passed all rules and was confirmed.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeHeld means a rule violation left the order unconfirmed.
	OutcomeHeld Outcome = "held"
	// OutcomeSkipped means the order had already advanced past a confirmable
	// status, so no action was taken.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeError means processing failed; the order stays unconfirmed.
	OutcomeError Outcome = "error"
)

// OrderEventRepository defines order event persistence operations.
type OrderEventRepository interface {
	LogEvent(ctx context.Context, event *domain.OrderEvent) (bool, error)
	GetRecentConfirmedCount(ctx context.Context, window time.Duration) (int, error)
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}

// FulfillmentGateway defines the remote fulfillment system operations.
type FulfillmentGateway interface {
	GetOrder(ctx context.Context, orderID int64) (*fulfillment.OrderStatus, error)
	ConfirmOrder(ctx context.Context, orderID int64) error
}

// Notifier delivers operator alerts. Delivery failures are advisory and must
// never block processing.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// UseCase defines the order processing interface.
type UseCase interface {
	// Process evaluates one webhook delivery and carries out the resulting
	// decision. It never returns an error: every failure is recorded as an
	// error event and reported through the notifier best-effort.
	Process(ctx context.Context, rawPayload []byte) Outcome
}

// MaintenanceUseCase defines operator maintenance operations that live
// outside the webhook path.
type MaintenanceUseCase interface {
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
