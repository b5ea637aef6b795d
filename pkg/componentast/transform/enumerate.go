// Package transform holds the Component AST passes that run between mapping
// and serialization: numbering, chain flattening and payload handling.
package transform

import (
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// EnumerateComponents returns a copy of tree with every component numbered in
// depth-first pre-order. The root gets node.RootIndex and the remaining
// components count up from zero, so the indices are dense. Text nodes are
// untouched and the root always has a children list.
func EnumerateComponents[E any](tree *node.Component[E]) *node.Component[E] {
	root := tree.CloneComponent()

	enumerate[E](root, node.RootIndex)

	if root.Children == nil {
		root.Children = []node.Node[E]{}
	}

	return root
}

// enumerate numbers current and its descendants starting at next and returns
// the next free index.
func enumerate[E any](current node.Node[E], next int) int {
	component, ok := node.AsComponent(current)
	if !ok {
		return next
	}

	component.Index = next
	component.Indexed = true
	next++

	for _, child := range component.Children {
		next = enumerate(child, next)
	}

	return next
}
