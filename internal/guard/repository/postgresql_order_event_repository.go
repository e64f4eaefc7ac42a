// Package repository implements order event persistence for PostgreSQL and MySQL.
// The order_events table is append-mostly: the webhook subsystem only inserts,
// guarded by a uniqueness constraint on (printful_order_id, event_type).
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/order-guard/internal/database"
	apperrors "github.com/allisson/order-guard/internal/errors"
	guardDomain "github.com/allisson/order-guard/internal/guard/domain"
)

// PostgreSQLOrderEventRepository implements OrderEvent persistence for PostgreSQL.
// Relies on ON CONFLICT DO NOTHING for idempotent inserts, so duplicate webhook
// deliveries never raise and never create duplicate rows.
type PostgreSQLOrderEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderEventRepository creates a new PostgreSQL OrderEvent repository.
func NewPostgreSQLOrderEventRepository(db *sql.DB) *PostgreSQLOrderEventRepository {
	return &PostgreSQLOrderEventRepository{db: db}
}

// LogEvent inserts an order event. Returns true if a new row was inserted,
// false if an event for the same (printful_order_id, event_type) pair already
// existed. The conflict case is a silent no-op, not an error.
func (p *PostgreSQLOrderEventRepository) LogEvent(
	ctx context.Context,
	event *guardDomain.OrderEvent,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO order_events
			  (id, printful_order_id, event_type, production_cost, retail_total,
			   item_count, rule_violated, raw_payload, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (printful_order_id, event_type) DO NOTHING`

	result, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
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
// trailing window. Used as an approximate velocity signal; concurrent
// deliveries can both observe a count below the limit.
func (p *PostgreSQLOrderEventRepository) GetRecentConfirmedCount(
	ctx context.Context,
	window time.Duration,
) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM order_events
			  WHERE event_type = $1 AND created_at > $2`

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
// Only used by the retention CLI command; the webhook subsystem never deletes.
// When dryRun is true, returns the count without deleting.
func (p *PostgreSQLOrderEventRepository) DeleteOlderThan(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM order_events WHERE created_at < $1`
		if err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count old order events")
		}
		return count, nil
	}

	query := `DELETE FROM order_events WHERE created_at < $1`
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
