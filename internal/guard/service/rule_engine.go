// Package service implements the pure order evaluation rules. No I/O happens
// here; callers supply the velocity count and limits.
package service

import (
	"fmt"

	"github.com/allisson/order-guard/internal/guard/domain"
)

// Rule names reported on violations.
const (
	RuleMaxCost    = "max_cost"
	RuleMaxItemQty = "max_item_qty"
	RuleVelocity   = "velocity"
)

// Limits holds the configured order limits.
type Limits struct {
	// MaxProductionCost is the highest production cost allowed, exclusive:
	// a cost exactly equal to the cap passes.
	MaxProductionCost float64
	// MaxItemQty is the highest per-item quantity allowed, exclusive.
	MaxItemQty int
	// MaxHourlyVelocity is the confirmed-order count at which further orders
	// are held, inclusive: a count equal to the cap fails.
	MaxHourlyVelocity int
}

// RuleEngine evaluates orders against configured limits.
type RuleEngine struct{}

// NewRuleEngine creates a RuleEngine.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Evaluate checks an order against all rules. Evaluation order is fixed and
// short-circuits: cost cap, then per-item quantity cap (items in input order),
// then hourly velocity cap. The first violated rule wins.
func (e *RuleEngine) Evaluate(
	productionCost float64,
	items []domain.OrderItem,
	recentOrderCount int,
	limits Limits,
) domain.RuleResult {
	if productionCost > limits.MaxProductionCost {
		return domain.Fail(
			RuleMaxCost,
			fmt.Sprintf(
				"Production cost $%.2f exceeds limit $%.2f",
				productionCost,
				limits.MaxProductionCost,
			),
		)
	}

	for _, item := range items {
		if item.Quantity > limits.MaxItemQty {
			return domain.Fail(
				RuleMaxItemQty,
				fmt.Sprintf("Item quantity %d exceeds limit %d", item.Quantity, limits.MaxItemQty),
			)
		}
	}

	if recentOrderCount >= limits.MaxHourlyVelocity {
		return domain.Fail(
			RuleVelocity,
			fmt.Sprintf(
				"Hourly order count %d exceeds limit %d",
				recentOrderCount,
				limits.MaxHourlyVelocity,
			),
		)
	}

	return domain.Pass()
}
