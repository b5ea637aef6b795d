package mdast

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

const maxLabelValue = 24

// Describe returns a one-line label for a node: its type followed by its
// value or props, shortened for display.
func Describe(mdNode *Node) string {
	if mdNode == nil {
		return "<nil>"
	}

	var details []string

	if mdNode.Value != "" {
		details = append(details, strconv.Quote(shorten(mdNode.Value)))
	}

	for _, key := range slices.Sorted(maps.Keys(mdNode.Props)) {
		details = append(details, key+"="+shorten(mdNode.Props[key]))
	}

	if len(details) == 0 {
		return string(mdNode.Type)
	}

	return string(mdNode.Type) + "(" + strings.Join(details, " ") + ")"
}

// Outline renders a markdown tree as an indented outline.
func Outline(root *Node) string {
	var builder strings.Builder

	writeOutline(&builder, root, 0)

	return builder.String()
}

func writeOutline(builder *strings.Builder, mdNode *Node, depth int) {
	builder.WriteString(strings.Repeat("  ", depth))
	builder.WriteString(Describe(mdNode))
	builder.WriteByte('\n')

	if mdNode == nil {
		return
	}

	for _, child := range mdNode.Children {
		writeOutline(builder, child, depth+1)
	}
}

// ComponentOutline renders a Component AST over markdown nodes.
func ComponentOutline(root node.Node[*Node]) string {
	return node.Sprint(root, Describe)
}

func shorten(value string) string {
	if utf8.RuneCountInString(value) <= maxLabelValue {
		return value
	}

	runes := []rune(value)

	return string(runes[:maxLabelValue-1]) + "…"
}
