package transform

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// FlattenComponentTree returns a copy of tree in which every chain of
// components, each holding exactly one component child, is collapsed into a
// single component. The merged component keeps the outermost index and lists
// the original nodes of the whole chain outermost first.
//
// Every component must carry at least one original node.
func FlattenComponentTree[E any](tree *node.Component[E]) (*node.Component[E], error) {
	flattened, err := flattenComponent(tree)
	if err != nil {
		return nil, fmt.Errorf("flatten component tree: %w", err)
	}

	return flattened, nil
}

func flattenNode[E any](current node.Node[E]) (node.Node[E], error) {
	switch typed := current.(type) {
	case *node.Text[E]:
		return typed.Clone(), nil
	case *node.Component[E]:
		return flattenComponent(typed)
	default:
		return nil, fmt.Errorf("%w: %T", node.ErrUnexpectedNode, current)
	}
}

func flattenComponent[E any](component *node.Component[E]) (*node.Component[E], error) {
	if len(component.OriginalNodes) == 0 {
		return nil, componentError(component, node.ErrMissingOriginalNodes)
	}

	merged := &node.Component[E]{
		OriginalNodes: slices.Clone(component.OriginalNodes),
		Index:         component.Index,
		Indexed:       component.Indexed,
	}

	children := component.Children

	for len(children) == 1 {
		only, ok := node.AsComponent(children[0])
		if !ok {
			break
		}

		if len(only.OriginalNodes) == 0 {
			return nil, componentError(only, node.ErrMissingOriginalNodes)
		}

		merged.OriginalNodes = append(merged.OriginalNodes, only.OriginalNodes...)
		children = only.Children
	}

	flattenedChildren, err := mapChildren(children, flattenNode[E])
	if err != nil {
		return nil, err
	}

	merged.Children = flattenedChildren

	return merged, nil
}

// UnflattenComponentTree reverses FlattenComponentTree: every component
// holding several original nodes is expanded into a chain of nested
// components, one per original node. The outermost keeps the index; the new
// inner components are unnumbered.
func UnflattenComponentTree[E any](tree *node.Component[E]) (*node.Component[E], error) {
	unflattened, err := unflattenComponent(tree)
	if err != nil {
		return nil, fmt.Errorf("unflatten component tree: %w", err)
	}

	return unflattened, nil
}

func unflattenNode[E any](current node.Node[E]) (node.Node[E], error) {
	switch typed := current.(type) {
	case *node.Text[E]:
		return typed.Clone(), nil
	case *node.Component[E]:
		return unflattenComponent(typed)
	default:
		return nil, fmt.Errorf("%w: %T", node.ErrUnexpectedNode, current)
	}
}

func unflattenComponent[E any](component *node.Component[E]) (*node.Component[E], error) {
	if len(component.OriginalNodes) == 0 {
		return nil, componentError(component, node.ErrMissingOriginalNodes)
	}

	children, err := mapChildren(component.Children, unflattenNode[E])
	if err != nil {
		return nil, err
	}

	originals := slices.Clone(component.OriginalNodes)

	for len(originals) > 1 {
		innermost := originals[len(originals)-1]
		originals = originals[:len(originals)-1]

		children = []node.Node[E]{
			&node.Component[E]{
				Children:      children,
				OriginalNodes: []E{innermost},
			},
		}
	}

	return &node.Component[E]{
		Children:      children,
		OriginalNodes: slices.Clip(originals),
		Index:         component.Index,
		Indexed:       component.Indexed,
	}, nil
}

// mapChildren applies fn to every child, keeping nil and empty lists apart.
func mapChildren[E any](children []node.Node[E], fn func(node.Node[E]) (node.Node[E], error)) ([]node.Node[E], error) {
	if children == nil {
		return nil, nil
	}

	mapped := make([]node.Node[E], 0, len(children))

	for _, child := range children {
		result, err := fn(child)
		if err != nil {
			return nil, err
		}

		mapped = append(mapped, result)
	}

	return mapped, nil
}

func componentError[E any](component *node.Component[E], err error) error {
	if !component.Indexed {
		return err
	}

	return fmt.Errorf("component %d: %w", component.Index, err)
}
