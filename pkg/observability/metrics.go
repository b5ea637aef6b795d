package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// StatusOK marks a successful request.
	StatusOK = "ok"
	// StatusError marks a failed request.
	StatusError = "error"

	attrOp     = "op"
	attrStatus = "status"
)

// Request duration buckets in seconds. Escaping is CPU bound and usually
// finishes well under a millisecond.
var durationBuckets = []float64{
	0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5,
}

// REDMetrics records rate, errors and duration per operation.
type REDMetrics struct {
	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics creates the RED instruments on meter.
func NewREDMetrics(meter metric.Meter) (*REDMetrics, error) {
	requests, err := meter.Int64Counter("mdescape.requests.total",
		metric.WithDescription("Total number of escape and unescape requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("create requests counter: %w", err)
	}

	errs, err := meter.Int64Counter("mdescape.errors.total",
		metric.WithDescription("Total number of failed requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}

	duration, err := meter.Float64Histogram("mdescape.request.duration.seconds",
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	inflight, err := meter.Int64UpDownCounter("mdescape.inflight.requests",
		metric.WithDescription("Requests currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("create inflight gauge: %w", err)
	}

	return &REDMetrics{
		requests: requests,
		errors:   errs,
		duration: duration,
		inflight: inflight,
	}, nil
}

// RecordRequest records one finished request. Safe on a nil receiver.
func (red *REDMetrics) RecordRequest(ctx context.Context, op, status string, elapsed time.Duration) {
	if red == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	red.requests.Add(ctx, 1, attrs)
	red.duration.Record(ctx, elapsed.Seconds(), attrs)

	if status == StatusError {
		red.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// Track marks op as in flight and returns a function that records the
// outcome once the request finishes.
func (red *REDMetrics) Track(ctx context.Context, op string) func(err error) {
	if red == nil {
		return func(error) {}
	}

	started := time.Now()
	opAttr := metric.WithAttributes(attribute.String(attrOp, op))

	red.inflight.Add(ctx, 1, opAttr)

	return func(err error) {
		red.inflight.Add(ctx, -1, opAttr)

		status := StatusOK
		if err != nil {
			status = StatusError
		}

		red.RecordRequest(ctx, op, status, time.Since(started))
	}
}
