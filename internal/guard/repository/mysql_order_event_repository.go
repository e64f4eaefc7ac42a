package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/order-guard/internal/database"
	apperrors "github.com/allisson/order-guard/internal/errors"
	guardDomain "github.com/allisson/order-guard/internal/guard/domain"
)

// MySQLOrderEventRepository implements OrderEvent persistence for MySQL.
// Uses INSERT IGNORE against the unique (printful_order_id, event_type) index
// for idempotent inserts, and CHAR(36) for UUID storage.
type MySQLOrderEventRepository struct {
	db *sql.DB
}

// NewMySQLOrderEventRepository creates a new MySQL OrderEvent repository.
func NewMySQLOrderEventRepository(db *sql.DB) *MySQLOrderEventRepository {
	return &MySQLOrderEventRepository{db: db}
}

// LogEvent inserts an order event. Returns true if a new row was inserted,
// false if an event for the same (printful_order_id, event_type) pair already
// existed.
func (m *MySQLOrderEventRepository) LogEvent(
	ctx context.Context,
	event *guardDomain.OrderEvent,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT IGNORE INTO order_events
			  (id, printful_order_id, event_type, production_cost, retail_total,
			   item_count, rule_violated, raw_payload, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		event.ID.String(),
		event.PrintfulOrderID,
		string(event.EventType),
		event.ProductionCost,
		event.RetailTotal,
		event.ItemCount,
		event.RuleViolated,
		event.RawPayload,
		event.CreatedAt,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to log order event")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read rows affected")
	}

	return rows > 0, nil
}

// GetRecentConfirmedCount counts order_confirmed events created within the
// trailing window.
func (m *MySQLOrderEventRepository) GetRecentConfirmedCount(
	ctx context.Context,
	window time.Duration,
) (int, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM order_events
			  WHERE event_type = ? AND created_at > ?`

	cutoff := time.Now().UTC().Add(-window)

	var count int
	err := querier.QueryRowContext(
		ctx,
		query,
		string(guardDomain.EventOrderConfirmed),
		cutoff,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count recent confirmed orders")
	}

	return count, nil
}

// DeleteOlderThan removes order events older than the given number of days.
// Only used by the retention CLI command. When dryRun is true, returns the
// count without deleting.
func (m *MySQLOrderEventRepository) DeleteOlderThan(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM order_events WHERE created_at < ?`
		if err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count old order events")
		}
		return count, nil
	}

	query := `DELETE FROM order_events WHERE created_at < ?`
	result, err := querier.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete old order events")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read rows affected")
	}

	return rows, nil
}
