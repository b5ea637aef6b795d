// Package commands implements the mdescape command tree.
package commands

import (
	"github.com/spf13/cobra"
)

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand builds the mdescape command with all subcommands.
func NewRootCommand() *cobra.Command {
	globals := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mdescape",
		Short: "Escape markdown structure into translatable placeholder strings",
		Long: `mdescape turns the formatting, links and other structure of a markdown AST
into numbered placeholders so that only text reaches a translator, and
rebuilds the tree from the translated string.

  Read the <c0>guide</c0> before <c1>launch</c1><c2/>

Commands:
  escape     tree -> bundle (placeholder string + escaped nodes)
  unescape   bundle + translation -> tree
  roundtrip  escape and unescape a tree, showing any difference
  inspect    list the components of a tree or bundle
  validate   check a tree against the mdast schema
  mcp        serve the pipeline as MCP tools on stdio
  serve      serve the pipeline over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globals.ConfigPath, "config", "c", "", "config file (default: ./mdescape.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(
		NewEscapeCommand(globals),
		NewUnescapeCommand(globals),
		NewRoundTripCommand(globals),
		NewInspectCommand(globals),
		NewValidateCommand(globals),
		NewMCPCommand(globals),
		NewServeCommand(globals),
		NewVersionCommand(),
	)

	return rootCmd
}
