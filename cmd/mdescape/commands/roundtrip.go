package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
)

// ErrRoundTripMismatch is returned when an untranslated round trip does not
// reproduce the source tree.
var ErrRoundTripMismatch = errors.New("round trip changed the tree")

type roundTripOptions struct {
	inputFormat    string
	translated     string
	translatedFile string
}

// NewRoundTripCommand creates the roundtrip command.
func NewRoundTripCommand(globals *GlobalOptions) *cobra.Command {
	opts := &roundTripOptions{}

	cmd := &cobra.Command{
		Use:   "roundtrip <tree.json|tree.yaml|->",
		Short: "Escape and unescape a tree and show what changed",
		Long: `Escape a markdown AST and rebuild it, then print a line diff of the two
trees as JSON. Without a translation the placeholder string is fed back
and any difference is an error. With a translation the diff shows how the
translated tree differs from the source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runRoundTrip(cobraCmd, globals, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "tree format: json or yaml (default: detected)")
	cmd.Flags().StringVarP(&opts.translated, "translated", "t", "", "translated placeholder string")
	cmd.Flags().StringVar(&opts.translatedFile, "translated-file", "", "file holding the translated string")

	cmd.MarkFlagsMutuallyExclusive("translated", "translated-file")

	return cmd
}

func runRoundTrip(cobraCmd *cobra.Command, globals *GlobalOptions, opts *roundTripOptions, input string) error {
	rt, err := newRuntime(globals, runtimeOptions{logWriter: cobraCmd.ErrOrStderr(), mode: observability.ModeCLI})
	if err != nil {
		return err
	}
	defer rt.close()

	tree, err := readTree(input, opts.inputFormat, cobraCmd.InOrStdin())
	if err != nil {
		return err
	}

	escaped, err := rt.svc.Escape(cobraCmd.Context(), tree)
	if err != nil {
		return err
	}

	translated := escaped.Escaped
	hasTranslation := cobraCmd.Flags().Changed("translated") || opts.translatedFile != ""

	if hasTranslation {
		translated, err = readTranslation(opts.translated, opts.translatedFile, cobraCmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	result, err := rt.svc.Unescape(cobraCmd.Context(), escaped, translated)
	if err != nil {
		return err
	}

	out := cobraCmd.OutOrStdout()

	fmt.Fprintf(out, "escaped:    %s\n", escaped.Escaped)

	if hasTranslation {
		fmt.Fprintf(out, "translated: %s\n", translated)
	}

	reportUnescape(out, result)

	before, err := mdast.Marshal(tree, mdast.FormatJSON)
	if err != nil {
		return err
	}

	after, err := mdast.Marshal(result.Tree, mdast.FormatJSON)
	if err != nil {
		return err
	}

	if string(before) == string(after) {
		color.New(color.FgGreen).Fprintln(out, "trees are identical")

		return nil
	}

	writeDiff(out, string(before), string(after))

	if hasTranslation {
		return nil
	}

	return ErrRoundTripMismatch
}

// writeDiff prints a line diff: removed lines in red, added lines in green.
func writeDiff(writer io.Writer, before, after string) {
	dmp := diffmatchpatch.New()

	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	for _, diff := range diffs {
		for _, line := range splitLines(diff.Text) {
			switch diff.Type {
			case diffmatchpatch.DiffDelete:
				removed.Fprintf(writer, "- %s\n", line)
			case diffmatchpatch.DiffInsert:
				added.Fprintf(writer, "+ %s\n", line)
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(writer, "  %s\n", line)
			}
		}
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
