package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/internal/service"
	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/codec"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
)

var errNoTranslation = errors.New("one of --translated or --translated-file is required")

type unescapeOptions struct {
	translated     string
	translatedFile string
	outputFormat   string
	outputPath     string
	strict         bool
}

// NewUnescapeCommand creates the unescape command.
func NewUnescapeCommand(globals *GlobalOptions) *cobra.Command {
	opts := &unescapeOptions{}

	cmd := &cobra.Command{
		Use:   "unescape <bundle|->",
		Short: "Rebuild a markdown AST from a bundle and a translated string",
		Long: `Rebuild a markdown AST from a bundle written by "mdescape escape" and the
translation of its placeholder string. Placeholders may be reordered or
dropped. A malformed translation falls back to the source tree unless
--strict is set.

Examples:
  mdescape unescape doc.bundle.json --translated 'Lies den <c0>Leitfaden</c0>'
  mdescape unescape doc.bundle.json --translated-file doc.de.txt -o doc.de.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runUnescape(cobraCmd, globals, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.translated, "translated", "t", "", "translated placeholder string")
	cmd.Flags().StringVar(&opts.translatedFile, "translated-file", "",
		"file holding the translated string; one trailing line break is ignored")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "json", "tree format: json or yaml")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on malformed translations instead of falling back")

	cmd.MarkFlagsMutuallyExclusive("translated", "translated-file")

	return cmd
}

func runUnescape(cobraCmd *cobra.Command, globals *GlobalOptions, opts *unescapeOptions, input string) error {
	if !cobraCmd.Flags().Changed("translated") && opts.translatedFile == "" {
		return errNoTranslation
	}

	format, err := mdast.ParseFormat(opts.outputFormat)
	if err != nil {
		return fmt.Errorf("--format: %w", err)
	}

	rt, err := newRuntime(globals, runtimeOptions{
		logWriter:       cobraCmd.ErrOrStderr(),
		mode:            observability.ModeCLI,
		disableFallback: opts.strict,
	})
	if err != nil {
		return err
	}
	defer rt.close()

	data, label, err := readInput(input, cobraCmd.InOrStdin())
	if err != nil {
		return err
	}

	source, err := bundle.Decode(asReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	translated, err := readTranslation(opts.translated, opts.translatedFile, cobraCmd.InOrStdin())
	if err != nil {
		return err
	}

	result, err := rt.svc.Unescape(cobraCmd.Context(), source, translated)
	if err != nil {
		return err
	}

	if !globals.Quiet {
		reportUnescape(cobraCmd.ErrOrStderr(), result)
	}

	encoded, err := mdast.Marshal(result.Tree, format)
	if err != nil {
		return err
	}

	return writeOutput(opts.outputPath, cobraCmd.OutOrStdout(), encoded)
}

func reportUnescape(writer io.Writer, result *service.Result) {
	if result.FellBack {
		color.New(color.FgYellow).Fprintf(writer, "translation rejected, source tree kept: %v\n", result.Cause)
	}

	if result.Layout != nil && !result.Layout.Clean() {
		writeLayout(writer, *result.Layout)
	}
}

func writeLayout(writer io.Writer, report codec.LayoutReport) {
	warn := color.New(color.FgYellow)

	if len(report.Missing) > 0 {
		warn.Fprintf(writer, "  placeholders dropped by the translation: %v\n", report.Missing)
	}

	if len(report.Duplicated) > 0 {
		warn.Fprintf(writer, "  placeholders repeated by the translation: %v\n", report.Duplicated)
	}

	if len(report.Unknown) > 0 {
		warn.Fprintf(writer, "  placeholders unknown to the source: %v\n", report.Unknown)
	}

	if len(report.Reshaped) > 0 {
		warn.Fprintf(writer, "  placeholders written with a different tag shape: %v\n", report.Reshaped)
	}
}
