package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
)

type escapeOptions struct {
	inputFormat  string
	outputFormat string
	outputPath   string
	compress     bool
	printString  bool
}

// NewEscapeCommand creates the escape command.
func NewEscapeCommand(globals *GlobalOptions) *cobra.Command {
	opts := &escapeOptions{}

	cmd := &cobra.Command{
		Use:   "escape <tree.json|tree.yaml|->",
		Short: "Escape a markdown AST into a placeholder string bundle",
		Long: `Escape a markdown AST (mdast, JSON or YAML) into a bundle holding the
placeholder string to translate and the nodes needed to restore it.

Examples:
  mdescape escape doc.json -o doc.bundle.json
  mdescape escape - --compress < doc.yaml > doc.bundle.lz4
  mdescape escape doc.json --string`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runEscape(cobraCmd, globals, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "tree format: json or yaml (default: detected)")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "", "bundle format: json or yaml (default: bundle.format)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "wrap the bundle in an LZ4 frame (default: bundle.compress)")
	cmd.Flags().BoolVar(&opts.printString, "string", false, "print only the placeholder string")

	return cmd
}

func runEscape(cobraCmd *cobra.Command, globals *GlobalOptions, opts *escapeOptions, input string) error {
	rt, err := newRuntime(globals, runtimeOptions{logWriter: cobraCmd.ErrOrStderr(), mode: observability.ModeCLI})
	if err != nil {
		return err
	}
	defer rt.close()

	tree, err := readTree(input, opts.inputFormat, cobraCmd.InOrStdin())
	if err != nil {
		return err
	}

	result, err := rt.svc.Escape(cobraCmd.Context(), tree)
	if err != nil {
		return err
	}

	if opts.printString {
		return writeOutput(opts.outputPath, cobraCmd.OutOrStdout(), []byte(result.Escaped+"\n"))
	}

	encodeOpts, err := bundleOptions(cobraCmd, rt, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	err = bundle.Encode(&buf, result, encodeOpts)
	if err != nil {
		return err
	}

	return writeOutput(opts.outputPath, cobraCmd.OutOrStdout(), buf.Bytes())
}

// bundleOptions merges flags over the bundle section of the configuration.
func bundleOptions(cobraCmd *cobra.Command, rt *runtime, opts *escapeOptions) (bundle.Options, error) {
	formatName := rt.cfg.Bundle.Format
	if opts.outputFormat != "" {
		formatName = opts.outputFormat
	}

	format, err := mdast.ParseFormat(formatName)
	if err != nil {
		return bundle.Options{}, fmt.Errorf("--format: %w", err)
	}

	compress := rt.cfg.Bundle.Compress
	if cobraCmd.Flags().Changed("compress") {
		compress = opts.compress
	}

	return bundle.Options{Format: format, Compress: compress}, nil
}
