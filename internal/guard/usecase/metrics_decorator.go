package usecase

import (
	"context"
	"time"

	"github.com/allisson/order-guard/internal/metrics"
)

// metricsDomain labels all gatekeeping metrics.
const metricsDomain = "guard"

// MetricsDecorator wraps a UseCase and records operation counts and durations
// per outcome.
type MetricsDecorator struct {
	next            UseCase
	businessMetrics metrics.BusinessMetrics
}

// NewMetricsDecorator creates a metrics-recording decorator around a UseCase.
func NewMetricsDecorator(next UseCase, businessMetrics metrics.BusinessMetrics) *MetricsDecorator {
	return &MetricsDecorator{
		next:            next,
		businessMetrics: businessMetrics,
	}
}

// Process delegates to the wrapped use case and records the outcome.
func (d *MetricsDecorator) Process(ctx context.Context, rawPayload []byte) Outcome {
	start := time.Now()

	outcome := d.next.Process(ctx, rawPayload)

	d.businessMetrics.RecordOperation(ctx, metricsDomain, "process_order", string(outcome))
	d.businessMetrics.RecordDuration(ctx, metricsDomain, "process_order", time.Since(start), string(outcome))

	return outcome
}
