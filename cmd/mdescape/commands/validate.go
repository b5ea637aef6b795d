package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
)

// ErrInvalidTree is returned when a document does not match the schema.
var ErrInvalidTree = errors.New("tree does not match the mdast schema")

type validateOptions struct {
	format  string
	noColor bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(globals *GlobalOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <tree.json|tree.yaml|->",
		Short: "Validate a markdown AST against the embedded mdast schema",
		Long: `Validate a markdown AST document against the mdast JSON schema shipped with
mdescape before escaping it.

Examples:
  mdescape validate doc.json
  mdescape validate - < doc.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runValidate(cobraCmd, globals, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.format, "input-format", "", "document format: json or yaml (default: detected)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(cobraCmd *cobra.Command, globals *GlobalOptions, opts *validateOptions, input string) error {
	if opts.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	data, label, err := readInput(input, cobraCmd.InOrStdin())
	if err != nil {
		return err
	}

	format, err := resolveFormat(opts.format, input, data)
	if err != nil {
		return err
	}

	violations, err := mdast.Validate(data, format)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	out := cobraCmd.OutOrStdout()

	if len(violations) == 0 {
		if !globals.Quiet {
			color.New(color.FgGreen).Fprintf(out, "tree is valid (%s)\n", label)
		}

		return nil
	}

	color.New(color.FgRed).Fprintf(out, "tree validation failed (%s)\n", label)

	for _, violation := range violations {
		color.New(color.FgRed).Fprintf(out, "  - %s\n", violation)
	}

	return fmt.Errorf("%w: %d violations", ErrInvalidTree, len(violations))
}
