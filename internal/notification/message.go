// Package notification formats and delivers operator alerts for order
// decisions. Delivery is best-effort and never blocks order processing.
package notification

import (
	"fmt"
	"strings"

	"github.com/allisson/order-guard/internal/guard/domain"
)

// dashboardURL is the Printful order review page linked from held alerts.
const dashboardURL = "https://www.printful.com/dashboard/default/orders"

// FormatConfirmed renders the alert for a confirmed order.
func FormatConfirmed(orderID int64, productionCost, retailTotal float64, items []domain.OrderItem) string {
	return fmt.Sprintf(
		"*Order Confirmed* `#%d`\n\n"+
			"*Your cost:* $%.2f\n"+
			"*Retail total:* $%.2f\n"+
			"*Items:*\n%s",
		orderID,
		productionCost,
		retailTotal,
		formatItems(items),
	)
}

// FormatHeld renders the alert for an order held by a rule violation,
// including the violated rule and a review link.
func FormatHeld(
	orderID int64,
	productionCost, retailTotal float64,
	items []domain.OrderItem,
	ruleViolated, reason string,
) string {
	return fmt.Sprintf(
		"*Order Held* `#%d`\n\n"+
			"*Rule violated:* `%s`\n"+
			"*Reason:* %s\n"+
			"*Your cost:* $%.2f\n"+
			"*Retail total:* $%.2f\n"+
			"*Items:*\n%s\n\n"+
			"[Review in Printful](%s)",
		orderID,
		ruleViolated,
		reason,
		productionCost,
		retailTotal,
		formatItems(items),
		dashboardURL,
	)
}

// FormatError renders the alert for a processing failure. The order remains
// in its prior unconfirmed state.
func FormatError(orderID int64, errText string) string {
	return fmt.Sprintf(
		"*Order Guard Error* `#%d`\n\n"+
			"*Error:* %s\n\n"+
			"Order remains as draft. Check Printful dashboard.",
		orderID,
		errText,
	)
}

// formatItems renders one indented line per item.
func formatItems(items []domain.OrderItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("  - %s x%d", item.Name, item.Quantity))
	}
	return strings.Join(lines, "\n")
}
