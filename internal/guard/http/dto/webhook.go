// Package dto provides data transfer objects for webhook payload decoding.
// Decoding is strict about shape but tolerant of the loose typing Printful
// uses on the wire (monetary totals arrive as strings).
package dto

import (
	"bytes"
	"encoding/json"
	"strconv"

	validation "github.com/jellydator/validation"

	"github.com/allisson/order-guard/internal/guard/domain"
	appvalidation "github.com/allisson/order-guard/internal/validation"
)

// EventOrderCreated is the only webhook event type that triggers processing.
const EventOrderCreated = "order_created"

// Money decodes a monetary amount that may arrive as a JSON string, a number,
// or null.
type Money float64

// UnmarshalJSON implements json.Unmarshaler for Money.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}

	s := string(data)
	if s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		if unquoted == "" {
			*m = 0
			return nil
		}
		s = unquoted
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*m = Money(value)
	return nil
}

// WebhookPayload is the top-level Printful webhook body.
type WebhookPayload struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

// WebhookData wraps the order carried by the webhook.
type WebhookData struct {
	Order WebhookOrder `json:"order"`
}

// WebhookOrder is the order as delivered on the wire.
type WebhookOrder struct {
	ID          int64         `json:"id"`
	Status      string        `json:"status"`
	Costs       WebhookCosts  `json:"costs"`
	RetailCosts WebhookCosts  `json:"retail_costs"`
	Items       []WebhookItem `json:"items"`
}

// WebhookCosts carries an order cost breakdown; only the total is used.
type WebhookCosts struct {
	Total Money `json:"total"`
}

// WebhookItem is a single line item on the wire. Quantity defaults to 1 when
// absent, matching the webhook sender's semantics.
type WebhookItem struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
}

// ParseWebhookPayload decodes a raw webhook body.
func ParseWebhookPayload(raw []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Validate checks that the payload carries a usable order.
func (p *WebhookPayload) Validate() error {
	return appvalidation.WrapValidationError(validation.ValidateStruct(p,
		validation.Field(&p.Data, validation.By(func(value interface{}) error {
			data, ok := value.(WebhookData)
			if !ok {
				return validation.NewError("validation_webhook_data", "must be webhook data")
			}
			return validation.ValidateStruct(&data,
				validation.Field(&data.Order, validation.By(validateOrder)),
			)
		})),
	))
}

// validateOrder requires a positive order id.
func validateOrder(value interface{}) error {
	order, ok := value.(WebhookOrder)
	if !ok {
		return validation.NewError("validation_webhook_order", "must be a webhook order")
	}
	return validation.ValidateStruct(&order,
		validation.Field(&order.ID, validation.Required, validation.Min(int64(1))),
	)
}

// ToSnapshot normalizes the wire order into a domain snapshot. Item names
// default to "Unknown" and quantities to 1, and the item count is the sum of
// all quantities.
func (p *WebhookPayload) ToSnapshot() *domain.OrderSnapshot {
	order := p.Data.Order

	items := make([]domain.OrderItem, 0, len(order.Items))
	itemCount := 0
	for _, item := range order.Items {
		name := item.Name
		if name == "" {
			name = "Unknown"
		}
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		items = append(items, domain.OrderItem{Name: name, Quantity: quantity})
		itemCount += quantity
	}

	return &domain.OrderSnapshot{
		OrderID:        order.ID,
		Status:         order.Status,
		ProductionCost: float64(order.Costs.Total),
		RetailTotal:    float64(order.RetailCosts.Total),
		Items:          items,
		ItemCount:      itemCount,
	}
}
