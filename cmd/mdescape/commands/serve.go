package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/internal/server"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
)

type serveOptions struct {
	host string
	port int
}

// NewServeCommand creates the HTTP server command.
func NewServeCommand(globals *GlobalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the escape pipeline over HTTP",
		Long: `Start the HTTP API.

Routes:
  POST /api/escape     {"tree": <mdast>}                         -> bundle
  POST /api/unescape   {"bundle": <bundle>, "translated": "..."} -> tree
  GET  /healthz, /readyz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return runServe(cobraCmd, globals, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (default: server.host)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (default: server.port)")

	return cmd
}

func runServe(cobraCmd *cobra.Command, globals *GlobalOptions, opts *serveOptions) error {
	rt, err := newRuntime(globals, runtimeOptions{logWriter: cobraCmd.ErrOrStderr(), mode: observability.ModeServe})
	if err != nil {
		return err
	}
	defer rt.close()

	// Metrics are scraped from /metrics; traces still go to OTLP when set.
	meter, metricsHandler, err := observability.PrometheusMeter()
	if err != nil {
		return err
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	escapeMetrics, err := observability.NewEscapeMetrics(meter)
	if err != nil {
		return err
	}

	serverCfg := rt.cfg.Server
	if opts.host != "" {
		serverCfg.Host = opts.host
	}

	if opts.port != 0 {
		serverCfg.Port = opts.port
	}

	srv := server.New(serverCfg, server.Deps{
		Service: rt.newService(red, escapeMetrics, false),
		Logger:  rt.logger(),
		Tracer:  rt.providers.Tracer,
		Metrics: metricsHandler,
	})

	ctx, stop := signal.NotifyContext(cobraCmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
