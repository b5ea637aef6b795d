package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Describer renders a short label for an external node.
type Describer[E any] func(external E) string

// Sprint renders the tree as an indented outline, one node per line.
// Components show their index (or "?" when unnumbered) and the labels of
// their original nodes.
func Sprint[E any](root Node[E], describe Describer[E]) string {
	var builder strings.Builder

	_ = Walk(root, func(current Node[E], depth int) error {
		builder.WriteString(strings.Repeat("  ", depth))

		switch typed := current.(type) {
		case *Text[E]:
			fmt.Fprintf(&builder, "text %q\n", typed.Value)
		case *Component[E]:
			writeComponentLine(&builder, typed, describe)
		}

		return nil
	})

	return builder.String()
}

func writeComponentLine[E any](builder *strings.Builder, component *Component[E], describe Describer[E]) {
	index := "?"
	if component.Indexed {
		index = strconv.Itoa(component.Index)
	}

	labels := make([]string, 0, len(component.OriginalNodes))
	for _, original := range component.OriginalNodes {
		if describe == nil {
			labels = append(labels, fmt.Sprintf("%v", original))

			continue
		}

		labels = append(labels, describe(original))
	}

	fmt.Fprintf(builder, "component %s [%s]", index, strings.Join(labels, " > "))

	if component.Children == nil {
		builder.WriteString(" (leaf)")
	}

	builder.WriteByte('\n')
}
