package domain

// OrderItem is a single line item on an order.
type OrderItem struct {
	Name     string
	Quantity int
}

// OrderSnapshot is the normalized view of an order extracted from a webhook
// payload. It lives only for the duration of one processing pass.
type OrderSnapshot struct {
	OrderID        int64
	Status         string
	ProductionCost float64
	RetailTotal    float64
	Items          []OrderItem
	ItemCount      int
}

// RuleResult is the outcome of evaluating an order against the configured
// limits. Produced fresh per evaluation and folded into an OrderEvent; never
// persisted directly.
type RuleResult struct {
	Passed       bool
	ViolatedRule string
	Reason       string
}

// Pass returns a passing result.
func Pass() RuleResult {
	return RuleResult{Passed: true}
}

// Fail returns a failing result for the given rule and reason.
func Fail(rule, reason string) RuleResult {
	return RuleResult{Passed: false, ViolatedRule: rule, Reason: reason}
}
