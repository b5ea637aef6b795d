// Package codec converts between a numbered Component AST skeleton and its
// placeholder string.
//
// The string grammar is fixed: literal text, opening tags <cN>, closing tags
// </cN> and self-closing tags <cN/>, where N is a decimal component index.
// Literal text is not escaped.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// StringifyComponentTree renders a numbered tree as a placeholder string.
// The root renders only its children. A component with children renders as
// <cN>...</cN>, one without (absent or empty) as <cN/>.
func StringifyComponentTree[E any](tree node.Node[E]) (string, error) {
	var builder strings.Builder

	err := writeNode(&builder, tree)
	if err != nil {
		return "", fmt.Errorf("stringify component tree: %w", err)
	}

	return builder.String(), nil
}

func writeNode[E any](builder *strings.Builder, current node.Node[E]) error {
	switch typed := current.(type) {
	case *node.Text[E]:
		builder.WriteString(typed.Value)

		return nil
	case *node.Component[E]:
		return writeComponent(builder, typed)
	default:
		return fmt.Errorf("%w: %T", node.ErrUnexpectedNode, current)
	}
}

func writeComponent[E any](builder *strings.Builder, component *node.Component[E]) error {
	index, err := component.ComponentIndex()
	if err != nil {
		return err
	}

	if index < 0 {
		return writeChildren(builder, component.Children)
	}

	if !component.HasChildren() {
		writeTag(builder, TagSelfClosing, index)

		return nil
	}

	writeTag(builder, TagOpen, index)

	childErr := writeChildren(builder, component.Children)
	if childErr != nil {
		return childErr
	}

	writeTag(builder, TagClose, index)

	return nil
}

func writeChildren[E any](builder *strings.Builder, children []node.Node[E]) error {
	for _, child := range children {
		err := writeNode(builder, child)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeTag(builder *strings.Builder, kind TagKind, index int) {
	builder.WriteByte('<')

	if kind == TagClose {
		builder.WriteByte('/')
	}

	builder.WriteByte('c')
	builder.WriteString(strconv.Itoa(index))

	if kind == TagSelfClosing {
		builder.WriteByte('/')
	}

	builder.WriteByte('>')
}

// FormatTag renders a single tag of the given kind.
func FormatTag(kind TagKind, index int) string {
	var builder strings.Builder

	writeTag(&builder, kind, index)

	return builder.String()
}
