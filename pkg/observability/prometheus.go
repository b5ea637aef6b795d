package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewPrometheusProvider returns a MeterProvider whose instruments are served
// by the returned /metrics handler. Each call uses its own registry, so
// repeated calls do not conflict. Go runtime collectors are included.
func NewPrometheusProvider() (metric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()

	err := registry.Register(collectors.NewGoCollector())
	if err != nil {
		return nil, nil, fmt.Errorf("register go collector: %w", err)
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return provider, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}

// PrometheusMeter is NewPrometheusProvider narrowed to the mdescape meter.
func PrometheusMeter() (metric.Meter, http.Handler, error) {
	provider, handler, err := NewPrometheusProvider()
	if err != nil {
		return nil, nil, err
	}

	return provider.Meter(meterName), handler, nil
}
