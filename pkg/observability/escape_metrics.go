package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes of an unescape.
const (
	OutcomeRestored  = "restored"
	OutcomeFallback  = "fallback"
	OutcomeMalformed = "malformed"
)

var componentBuckets = []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256}

// EscapeStats summarizes one escape.
type EscapeStats struct {
	Components   int
	EscapedBytes int
}

// EscapeMetrics holds domain instruments of the escape pipeline.
type EscapeMetrics struct {
	components metric.Int64Histogram
	bytes      metric.Int64Histogram
	unescapes  metric.Int64Counter
	mismatches metric.Int64Counter
}

// NewEscapeMetrics creates the escape instruments on meter.
func NewEscapeMetrics(meter metric.Meter) (*EscapeMetrics, error) {
	components, err := meter.Int64Histogram("mdescape.escape.components",
		metric.WithDescription("Number of placeholders per escaped tree"),
		metric.WithExplicitBucketBoundaries(componentBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create components histogram: %w", err)
	}

	escapedBytes, err := meter.Int64Histogram("mdescape.escape.bytes",
		metric.WithDescription("Length of escaped strings"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create bytes histogram: %w", err)
	}

	unescapes, err := meter.Int64Counter("mdescape.unescape.total",
		metric.WithDescription("Unescape attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create unescape counter: %w", err)
	}

	mismatches, err := meter.Int64Counter("mdescape.unescape.layout_mismatches.total",
		metric.WithDescription("Translations whose placeholders differ from the source"),
	)
	if err != nil {
		return nil, fmt.Errorf("create layout mismatch counter: %w", err)
	}

	return &EscapeMetrics{
		components: components,
		bytes:      escapedBytes,
		unescapes:  unescapes,
		mismatches: mismatches,
	}, nil
}

// RecordEscape records the size of one escape. Safe on a nil receiver.
func (em *EscapeMetrics) RecordEscape(ctx context.Context, stats EscapeStats) {
	if em == nil {
		return
	}

	em.components.Record(ctx, int64(stats.Components))
	em.bytes.Record(ctx, int64(stats.EscapedBytes))
}

// RecordUnescape records the outcome of one unescape. Safe on a nil receiver.
func (em *EscapeMetrics) RecordUnescape(ctx context.Context, outcome string, layoutMismatch bool) {
	if em == nil {
		return
	}

	em.unescapes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if layoutMismatch {
		em.mismatches.Add(ctx, 1)
	}
}
