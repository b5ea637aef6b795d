package node

import (
	"errors"
	"fmt"
)

// ErrSkipChildren can be returned by a WalkFunc to skip the subtree of the
// current node. It is never returned by Walk.
var ErrSkipChildren = errors.New("skip children")

// WalkFunc is called for every node visited by Walk.
type WalkFunc[E any] func(current Node[E], depth int) error

// Walk visits the tree in depth-first pre-order, parents before children and
// children left to right. The first error returned by visit stops the walk.
func Walk[E any](root Node[E], visit WalkFunc[E]) error {
	return walk(root, 0, visit)
}

func walk[E any](current Node[E], depth int, visit WalkFunc[E]) error {
	switch current.(type) {
	case *Text[E], *Component[E]:
	default:
		return fmt.Errorf("%w: %T", ErrUnexpectedNode, current)
	}

	visitErr := visit(current, depth)
	if errors.Is(visitErr, ErrSkipChildren) {
		return nil
	}

	if visitErr != nil {
		return visitErr
	}

	component, ok := AsComponent(current)
	if !ok {
		return nil
	}

	for _, child := range component.Children {
		childErr := walk(child, depth+1, visit)
		if childErr != nil {
			return childErr
		}
	}

	return nil
}

// Components returns every component of the tree in pre-order.
func Components[E any](root Node[E]) []*Component[E] {
	var components []*Component[E]

	_ = Walk(root, func(current Node[E], _ int) error {
		if component, ok := AsComponent(current); ok {
			components = append(components, component)
		}

		return nil
	})

	return components
}

// CountComponents returns the number of numbered, non-root components in the
// tree. This is the number of placeholders the tree renders to.
func CountComponents[E any](root Node[E]) int {
	count := 0

	for _, component := range Components(root) {
		if component.Indexed && component.Index > RootIndex {
			count++
		}
	}

	return count
}
