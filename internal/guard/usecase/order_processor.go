package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/order-guard/internal/guard/domain"
	"github.com/allisson/order-guard/internal/guard/http/dto"
	"github.com/allisson/order-guard/internal/guard/service"
	"github.com/allisson/order-guard/internal/notification"
)

// Config holds order processor configuration.
type Config struct {
	// Limits are the configured order limits passed to the rule engine.
	Limits service.Limits
	// VelocityWindow is the trailing window for the velocity count.
	VelocityWindow time.Duration
}

// OrderProcessor implements the fail-closed decision pipeline for one webhook
// delivery. It runs off the request path; nothing here propagates back to the
// HTTP response.
type OrderProcessor struct {
	config     Config
	ruleEngine *service.RuleEngine
	eventRepo  OrderEventRepository
	gateway    FulfillmentGateway
	notifier   Notifier
	logger     *slog.Logger
}

// NewOrderProcessor creates an OrderProcessor.
func NewOrderProcessor(
	config Config,
	ruleEngine *service.RuleEngine,
	eventRepo OrderEventRepository,
	gateway FulfillmentGateway,
	notifier Notifier,
	logger *slog.Logger,
) *OrderProcessor {
	if config.VelocityWindow <= 0 {
		config.VelocityWindow = time.Hour
	}
	return &OrderProcessor{
		config:     config,
		ruleEngine: ruleEngine,
		eventRepo:  eventRepo,
		gateway:    gateway,
		notifier:   notifier,
		logger:     logger,
	}
}

// Process evaluates one webhook delivery and confirms or holds the order.
// The default on any uncertainty is to leave the order unconfirmed.
func (p *OrderProcessor) Process(ctx context.Context, rawPayload []byte) Outcome {
	payload, err := dto.ParseWebhookPayload(rawPayload)
	if err != nil {
		// The intake already rejected malformed JSON; reaching this point
		// means the payload mutated between accept and process.
		p.recordError(ctx, domain.SentinelOrderID, rawPayload, err.Error())
		return OutcomeError
	}

	if err := payload.Validate(); err != nil {
		p.logger.Error("webhook payload missing order id", slog.Any("error", err))
		p.recordError(ctx, domain.SentinelOrderID, rawPayload, err.Error())
		return OutcomeError
	}

	snapshot := payload.ToSnapshot()

	recentCount, err := p.eventRepo.GetRecentConfirmedCount(ctx, p.config.VelocityWindow)
	if err != nil {
		p.logger.Error("failed to read velocity count",
			slog.Int64("order_id", snapshot.OrderID),
			slog.Any("error", err),
		)
		p.recordError(ctx, snapshot.OrderID, rawPayload, err.Error())
		return OutcomeError
	}

	result := p.ruleEngine.Evaluate(
		snapshot.ProductionCost,
		snapshot.Items,
		recentCount,
		p.config.Limits,
	)

	if result.Passed {
		return p.confirm(ctx, snapshot, rawPayload)
	}
	return p.hold(ctx, snapshot, result, rawPayload)
}

// confirm re-checks the remote order status and requests confirmation.
func (p *OrderProcessor) confirm(
	ctx context.Context,
	snapshot *domain.OrderSnapshot,
	rawPayload []byte,
) Outcome {
	// Duplicate deliveries race each other; the remote status is the last
	// line of defense against confirming twice. A failed fetch does not
	// block confirmation since the confirm call itself is rejected for
	// orders that already advanced.
	existing, err := p.gateway.GetOrder(ctx, snapshot.OrderID)
	if err != nil {
		p.logger.Warn("failed to fetch order before confirm",
			slog.Int64("order_id", snapshot.OrderID),
			slog.Any("error", err),
		)
	} else if !existing.Confirmable() {
		p.logger.Info("order already advanced, skipping confirm",
			slog.Int64("order_id", snapshot.OrderID),
			slog.String("status", existing.Status),
		)
		return OutcomeSkipped
	}

	if err := p.gateway.ConfirmOrder(ctx, snapshot.OrderID); err != nil {
		p.logger.Error("failed to confirm order",
			slog.Int64("order_id", snapshot.OrderID),
			slog.Any("error", err),
		)

		event := domain.NewOrderEvent(snapshot.OrderID, domain.EventError).
			WithCosts(snapshot.ProductionCost, snapshot.RetailTotal, snapshot.ItemCount).
			WithRawPayload(rawPayload)
		p.logEvent(ctx, event)

		p.notify(ctx, notification.FormatError(
			snapshot.OrderID,
			"Failed to confirm order via Printful API",
		))
		return OutcomeError
	}

	event := domain.NewOrderEvent(snapshot.OrderID, domain.EventOrderConfirmed).
		WithCosts(snapshot.ProductionCost, snapshot.RetailTotal, snapshot.ItemCount).
		WithRawPayload(rawPayload)
	p.logEvent(ctx, event)

	p.notify(ctx, notification.FormatConfirmed(
		snapshot.OrderID,
		snapshot.ProductionCost,
		snapshot.RetailTotal,
		snapshot.Items,
	))

	p.logger.Info("order confirmed",
		slog.Int64("order_id", snapshot.OrderID),
		slog.Float64("production_cost", snapshot.ProductionCost),
	)
	return OutcomeConfirmed
}

// hold records the rule violation and leaves the order unconfirmed.
func (p *OrderProcessor) hold(
	ctx context.Context,
	snapshot *domain.OrderSnapshot,
	result domain.RuleResult,
	rawPayload []byte,
) Outcome {
	event := domain.NewOrderEvent(snapshot.OrderID, domain.EventOrderHeld).
		WithCosts(snapshot.ProductionCost, snapshot.RetailTotal, snapshot.ItemCount).
		WithRuleViolated(result.ViolatedRule).
		WithRawPayload(rawPayload)
	p.logEvent(ctx, event)

	p.notify(ctx, notification.FormatHeld(
		snapshot.OrderID,
		snapshot.ProductionCost,
		snapshot.RetailTotal,
		snapshot.Items,
		result.ViolatedRule,
		result.Reason,
	))

	p.logger.Info("order held",
		slog.Int64("order_id", snapshot.OrderID),
		slog.String("rule_violated", result.ViolatedRule),
		slog.String("reason", result.Reason),
	)
	return OutcomeHeld
}

// recordError leaves an auditable trail for a processing failure and sends a
// best-effort alert.
func (p *OrderProcessor) recordError(
	ctx context.Context,
	orderID int64,
	rawPayload []byte,
	errText string,
) {
	event := domain.NewOrderEvent(orderID, domain.EventError).
		WithRuleViolated(errText).
		WithRawPayload(rawPayload)
	p.logEvent(ctx, event)

	p.notify(ctx, notification.FormatError(orderID, errText))
}

// logEvent persists an event; a duplicate is a silent no-op and a write
// failure is logged but never propagated.
func (p *OrderProcessor) logEvent(ctx context.Context, event *domain.OrderEvent) {
	inserted, err := p.eventRepo.LogEvent(ctx, event)
	if err != nil {
		p.logger.Error("failed to log order event",
			slog.Int64("order_id", event.PrintfulOrderID),
			slog.String("event_type", string(event.EventType)),
			slog.Any("error", err),
		)
		return
	}
	if !inserted {
		p.logger.Info("duplicate order event skipped",
			slog.Int64("order_id", event.PrintfulOrderID),
			slog.String("event_type", string(event.EventType)),
		)
	}
}

// notify sends an alert; failures are logged only.
func (p *OrderProcessor) notify(ctx context.Context, text string) {
	if err := p.notifier.Send(ctx, text); err != nil {
		p.logger.Error("failed to send notification", slog.Any("error", err))
	}
}
