package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
)

func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func counterTotal(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	found := findMetric(rm, name)
	require.NotNil(t, found, "%s not found", name)

	sum, ok := found.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, point := range sum.DataPoints {
		total += point.Value
	}

	return total
}

func TestREDMetricsRecordRequest(t *testing.T) {
	t.Parallel()

	provider, reader := newTestMeterProvider(t)

	red, err := observability.NewREDMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	red.RecordRequest(ctx, "escape", observability.StatusOK, time.Millisecond)
	red.RecordRequest(ctx, "unescape", observability.StatusError, time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, rm, "mdescape.requests.total"))
	assert.Equal(t, int64(1), counterTotal(t, rm, "mdescape.errors.total"))
	assert.NotNil(t, findMetric(rm, "mdescape.request.duration.seconds"))
}

func TestREDMetricsTrack(t *testing.T) {
	t.Parallel()

	provider, reader := newTestMeterProvider(t)

	red, err := observability.NewREDMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	red.Track(ctx, "escape")(nil)
	red.Track(ctx, "escape")(errors.New("boom"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, rm, "mdescape.requests.total"))
	assert.Equal(t, int64(1), counterTotal(t, rm, "mdescape.errors.total"))
	assert.Equal(t, int64(0), counterTotal(t, rm, "mdescape.inflight.requests"))
}

func TestREDMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var red *observability.REDMetrics

	assert.NotPanics(t, func() {
		red.RecordRequest(context.Background(), "escape", observability.StatusOK, time.Second)
		red.Track(context.Background(), "escape")(nil)
	})
}

func TestEscapeMetrics(t *testing.T) {
	t.Parallel()

	provider, reader := newTestMeterProvider(t)

	em, err := observability.NewEscapeMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	em.RecordEscape(ctx, observability.EscapeStats{Components: 3, EscapedBytes: 42})
	em.RecordUnescape(ctx, observability.OutcomeRestored, false)
	em.RecordUnescape(ctx, observability.OutcomeFallback, true)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, rm, "mdescape.unescape.total"))
	assert.Equal(t, int64(1), counterTotal(t, rm, "mdescape.unescape.layout_mismatches.total"))

	components := findMetric(rm, "mdescape.escape.components")
	require.NotNil(t, components)

	histogram, ok := components.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, int64(3), histogram.DataPoints[0].Sum)
}

func TestEscapeMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var em *observability.EscapeMetrics

	assert.NotPanics(t, func() {
		em.RecordEscape(context.Background(), observability.EscapeStats{Components: 1})
		em.RecordUnescape(context.Background(), observability.OutcomeMalformed, true)
	})
}
