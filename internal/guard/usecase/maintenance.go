package usecase

import (
	"context"
	"log/slog"

	"github.com/allisson/order-guard/internal/database"
)

// OrderEventMaintenance implements retention maintenance for the order event
// table. It backs the clean-order-events CLI command; the webhook subsystem
// itself never deletes events.
type OrderEventMaintenance struct {
	txManager database.TxManager
	eventRepo OrderEventRepository
	logger    *slog.Logger
}

// NewOrderEventMaintenance creates an OrderEventMaintenance.
func NewOrderEventMaintenance(
	txManager database.TxManager,
	eventRepo OrderEventRepository,
	logger *slog.Logger,
) *OrderEventMaintenance {
	return &OrderEventMaintenance{txManager: txManager, eventRepo: eventRepo, logger: logger}
}

// DeleteOlderThan removes order events older than the given number of days,
// inside a single transaction. When dryRun is true, only reports how many
// rows would be removed.
func (m *OrderEventMaintenance) DeleteOlderThan(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	var count int64
	err := m.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = m.eventRepo.DeleteOlderThan(ctx, days, dryRun)
		return err
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("order event retention pass",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
		slog.Int64("count", count),
	)
	return count, nil
}
