package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/internal/mcp"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agent integration",
		Long: `Start a Model Context Protocol server on stdio.

Tools:
  - mdescape_escape:   markdown AST -> bundle with the placeholder string to translate
  - mdescape_unescape: bundle + translated string -> markdown AST

Logs go to stderr as JSON; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(globals, runtimeOptions{logWriter: cobraCmd.ErrOrStderr(), mode: observability.ModeMCP})
			if err != nil {
				return err
			}
			defer rt.close()

			srv := mcp.NewServer(mcp.ServerDeps{
				Service:       rt.svc,
				Logger:        rt.logger(),
				Metrics:       rt.red,
				Tracer:        rt.providers.Tracer,
				MaxInputBytes: rt.cfg.MCP.MaxInputBytes,
			})

			return srv.Run(cobraCmd.Context())
		},
	}
}
