// Package mapping converts between an external tree and a Component AST.
//
// The external tree is opaque: structural access goes through an Adapter,
// and the per-node decisions go through caller-supplied MapFunc and
// UnmapFunc callbacks.
package mapping

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// Mapping errors.
var (
	// ErrRootNotComponent is returned when the external root maps to a text node.
	ErrRootNotComponent = errors.New("external root must map to a component")
	// ErrLeafWithChildren is returned when a component has children but its
	// original node has no children list.
	ErrLeafWithChildren = errors.New("component does not allow children")
)

// Adapter gives the mapper structural access to external nodes.
type Adapter[E any] interface {
	// Children returns the ordered children of external and true, or false
	// when external has no children list.
	Children(external E) ([]E, bool)

	// ShallowClone copies external without its descendants. A node with a
	// children list gets an empty list; a node without one keeps none.
	ShallowClone(external E) E

	// WithChildren sets the children list of a node returned by ShallowClone
	// and returns it.
	WithChildren(external E, children []E) E
}

// MapFunc converts one external node into a Component AST node. A parent
// maps to a component with an empty children list that the mapper fills; a
// leaf maps to text or to a component without children.
type MapFunc[E any] func(external E) (node.Node[E], error)

// UnmapFunc converts one Component AST node back into an external node. The
// mapper attaches the unmapped children afterwards.
type UnmapFunc[E any] func(current node.Node[E]) (E, error)

// MapToComponentAst maps the external tree bottom-up into a Component AST.
// Original nodes recorded on components are shallow clones, so the returned
// tree shares nothing mutable with the input.
func MapToComponentAst[E any](tree E, adapter Adapter[E], mapFn MapFunc[E]) (*node.Component[E], error) {
	mapped, err := mapExternal(tree, adapter, mapFn)
	if err != nil {
		return nil, fmt.Errorf("map to component ast: %w", err)
	}

	root, ok := node.AsComponent(mapped)
	if !ok {
		return nil, fmt.Errorf("map to component ast: %w", ErrRootNotComponent)
	}

	return root, nil
}

func mapExternal[E any](external E, adapter Adapter[E], mapFn MapFunc[E]) (node.Node[E], error) {
	mapped, err := mapFn(external)
	if err != nil {
		return nil, err
	}

	switch typed := mapped.(type) {
	case *node.Text[E]:
		return typed.Clone(), nil
	case *node.Component[E]:
	default:
		return nil, fmt.Errorf("%w: %T", node.ErrUnexpectedNode, mapped)
	}

	component, _ := node.AsComponent(mapped)

	result := &node.Component[E]{
		Children:      node.CloneChildren(component.Children),
		OriginalNodes: shallowCloneAll(component.OriginalNodes, adapter),
		Index:         component.Index,
		Indexed:       component.Indexed,
	}

	externalChildren, isParent := adapter.Children(external)
	if !isParent {
		return result, nil
	}

	children := make([]node.Node[E], 0, len(externalChildren))

	for _, externalChild := range externalChildren {
		child, childErr := mapExternal(externalChild, adapter, mapFn)
		if childErr != nil {
			return nil, childErr
		}

		children = append(children, child)
	}

	result.Children = children

	return result, nil
}

func shallowCloneAll[E any](originals []E, adapter Adapter[E]) []E {
	if originals == nil {
		return nil
	}

	cloned := make([]E, len(originals))
	for idx, original := range originals {
		cloned[idx] = adapter.ShallowClone(original)
	}

	return cloned
}

// MapFromComponentAst maps an expanded Component AST back into an external
// tree. Each component yields exactly its single original node; children are
// unmapped recursively and attached to a fresh shallow clone.
func MapFromComponentAst[E any](tree *node.Expanded[E], adapter Adapter[E], unmapFn UnmapFunc[E]) (E, error) {
	var zero E

	if tree == nil {
		return zero, fmt.Errorf("map from component ast: %w: nil tree", node.ErrUnexpectedNode)
	}

	external, err := unmapNode[E](tree.Root(), adapter, unmapFn)
	if err != nil {
		return zero, fmt.Errorf("map from component ast: %w", err)
	}

	return external, nil
}

func unmapNode[E any](current node.Node[E], adapter Adapter[E], unmapFn UnmapFunc[E]) (E, error) {
	var zero E

	switch current.(type) {
	case *node.Text[E], *node.Component[E]:
	default:
		return zero, fmt.Errorf("%w: %T", node.ErrUnexpectedNode, current)
	}

	unmapped, err := unmapFn(current)
	if err != nil {
		return zero, err
	}

	external := adapter.ShallowClone(unmapped)

	// ShallowClone already decides between an empty and an absent list.
	component, ok := node.AsComponent(current)
	if !ok || len(component.Children) == 0 {
		return external, nil
	}

	if _, hasChildren := adapter.Children(external); !hasChildren {
		if !component.Indexed {
			return zero, ErrLeafWithChildren
		}

		return zero, fmt.Errorf("%w: component %d", ErrLeafWithChildren, component.Index)
	}

	children := make([]E, 0, len(component.Children))

	for _, child := range component.Children {
		externalChild, childErr := unmapNode(child, adapter, unmapFn)
		if childErr != nil {
			return zero, childErr
		}

		children = append(children, externalChild)
	}

	return adapter.WithChildren(external, children), nil
}
