package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/codec"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/transform"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
	"github.com/Sumatoshi-tech/mdescape/pkg/safeconv"
)

type inspectOptions struct {
	showTree bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(globals *GlobalOptions) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <tree|bundle|->",
		Short: "List the components of a tree or bundle",
		Long: `Show the placeholder string of a bundle, or of a tree after escaping it, and
a table of its components: the nodes each placeholder stands for and the
size of their payload. --tree also prints the component tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runInspect(cobraCmd, globals, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.showTree, "tree", false, "print the component tree")

	return cmd
}

func runInspect(cobraCmd *cobra.Command, globals *GlobalOptions, opts *inspectOptions, input string) error {
	rt, err := newRuntime(globals, runtimeOptions{logWriter: cobraCmd.ErrOrStderr(), mode: observability.ModeCLI})
	if err != nil {
		return err
	}
	defer rt.close()

	data, label, err := readInput(input, cobraCmd.InOrStdin())
	if err != nil {
		return err
	}

	inspected, bundleErr := bundle.Decode(asReader(data))
	if bundleErr != nil {
		tree, treeErr := mdast.Unmarshal(data, mdast.DetectFormat(data))
		if treeErr != nil {
			return fmt.Errorf("%s is neither a bundle nor a tree: %w", label, errors.Join(bundleErr, treeErr))
		}

		inspected, err = rt.svc.Escape(cobraCmd.Context(), tree)
		if err != nil {
			return err
		}
	}

	out := cobraCmd.OutOrStdout()

	fmt.Fprintf(out, "escaped: %s\n\n", inspected.Escaped)

	err = writeComponentTable(out, inspected)
	if err != nil {
		return err
	}

	if !opts.showTree {
		return nil
	}

	skeleton, err := codec.ParseComponentString[*mdast.Node](inspected.Escaped)
	if err != nil {
		return err
	}

	injected, err := transform.InjectComponentData(skeleton, inspected.Data())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s", mdast.ComponentOutline(injected))

	return nil
}

func writeComponentTable(writer io.Writer, inspected *bundle.Bundle) error {
	sizes, err := inspected.Size()
	if err != nil {
		return err
	}

	placeholders, err := codec.Placeholders(inspected.Escaped)
	if err != nil {
		return err
	}

	tags := make(map[int]string, len(placeholders))

	for _, placeholder := range placeholders {
		if placeholder.Kind != codec.TagClose {
			tags[placeholder.Index] = codec.FormatTag(placeholder.Kind, placeholder.Index)
		}
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Index", "Tag", "Nodes", "Payload"})

	for _, index := range inspected.Data().Indices() {
		labels := make([]string, 0, len(inspected.Components[index]))
		for _, original := range inspected.Components[index] {
			labels = append(labels, mdast.Describe(original))
		}

		tag := tags[index]
		if index == -1 {
			tag = "root"
		}

		tbl.AppendRow(table.Row{index, tag, strings.Join(labels, " > "), humanize.Bytes(safeconv.MustIntToUint64(sizes[index]))})
	}

	tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("%d components", len(tags)), humanize.Bytes(safeconv.SumSizes(sizes))})

	fmt.Fprintln(writer, tbl.Render())

	return nil
}
