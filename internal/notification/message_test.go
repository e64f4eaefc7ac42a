package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/order-guard/internal/guard/domain"
)

func TestFormatConfirmed(t *testing.T) {
	items := []domain.OrderItem{
		{Name: "Classic Tee", Quantity: 2},
		{Name: "Mug", Quantity: 1},
	}

	msg := FormatConfirmed(12345, 18.5, 35.0, items)

	assert.Contains(t, msg, "*Order Confirmed* `#12345`")
	assert.Contains(t, msg, "*Your cost:* $18.50")
	assert.Contains(t, msg, "*Retail total:* $35.00")
	assert.Contains(t, msg, "  - Classic Tee x2")
	assert.Contains(t, msg, "  - Mug x1")
}

func TestFormatHeld(t *testing.T) {
	items := []domain.OrderItem{{Name: "Poster", Quantity: 1}}

	msg := FormatHeld(777, 75.0, 120.0, items, "max_cost", "Production cost $75.00 exceeds limit $50.00")

	assert.Contains(t, msg, "*Order Held* `#777`")
	assert.Contains(t, msg, "*Rule violated:* `max_cost`")
	assert.Contains(t, msg, "*Reason:* Production cost $75.00 exceeds limit $50.00")
	assert.Contains(t, msg, "*Your cost:* $75.00")
	assert.Contains(t, msg, "*Retail total:* $120.00")
	assert.Contains(t, msg, "  - Poster x1")
	assert.Contains(t, msg, "[Review in Printful](https://www.printful.com/dashboard/default/orders)")
}

func TestFormatError(t *testing.T) {
	msg := FormatError(42, "failed to confirm order via Printful API")

	assert.Contains(t, msg, "*Order Guard Error* `#42`")
	assert.Contains(t, msg, "*Error:* failed to confirm order via Printful API")
	assert.Contains(t, msg, "Order remains as draft. Check Printful dashboard.")
}

func TestFormatError_SentinelOrderID(t *testing.T) {
	msg := FormatError(domain.SentinelOrderID, "missing order id in payload")
	assert.Contains(t, msg, "`#0`")
}
