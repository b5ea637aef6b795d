package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Sumatoshi-tech/mdescape/internal/service"
	"github.com/Sumatoshi-tech/mdescape/pkg/config"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
	"github.com/Sumatoshi-tech/mdescape/pkg/version"
)

// runtime bundles what every command needs: configuration, telemetry and
// the escape service.
type runtime struct {
	cfg       *config.Config
	providers observability.Providers
	svc       *service.Service
	red       *observability.REDMetrics
	metrics   *observability.EscapeMetrics
}

// runtimeOptions adjusts newRuntime per command.
type runtimeOptions struct {
	logWriter io.Writer
	mode      observability.AppMode
	// disableFallback overrides escape.fallback.
	disableFallback bool
}

func newRuntime(globals *GlobalOptions, opts runtimeOptions) (*runtime, error) {
	cfg, err := config.LoadConfig(globals.ConfigPath)
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(observabilityConfig(cfg, globals, opts))
	if err != nil {
		return nil, err
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	escapeMetrics, err := observability.NewEscapeMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:       cfg,
		providers: providers,
		red:       red,
		metrics:   escapeMetrics,
	}

	rt.svc = rt.newService(red, escapeMetrics, opts.disableFallback)

	return rt, nil
}

func (rt *runtime) newService(
	red *observability.REDMetrics, escapeMetrics *observability.EscapeMetrics, disableFallback bool,
) *service.Service {
	return service.New(service.Options{
		Fallback:    rt.cfg.Escape.Fallback && !disableFallback,
		CheckLayout: rt.cfg.Escape.CheckLayout,
	}, service.Deps{
		Logger:  rt.providers.Logger,
		Tracer:  rt.providers.Tracer,
		RED:     red,
		Metrics: escapeMetrics,
	})
}

func (rt *runtime) logger() *slog.Logger {
	return rt.providers.Logger
}

// close flushes telemetry.
func (rt *runtime) close() {
	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.logger().Warn("observability shutdown failed", "error", err)
	}
}

func observabilityConfig(cfg *config.Config, globals *GlobalOptions, opts runtimeOptions) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = strings.EqualFold(cfg.Logging.Format, "json")
	obsCfg.LogWriter = opts.logWriter
	obsCfg.Mode = opts.mode

	if obsCfg.LogWriter == nil {
		obsCfg.LogWriter = os.Stderr
	}

	switch {
	case globals.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case globals.Quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	return obsCfg
}
