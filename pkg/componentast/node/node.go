// Package node provides the Component AST: the intermediate tree used to
// escape structural subtrees of an external document tree into numbered
// placeholder tags.
//
// A tree is made of two variants. Text is a leaf carrying literal content.
// Component stands in for one or more external nodes (its original nodes) and
// may hold ordered children. The root is a Component numbered RootIndex.
//
// E is the node type of the external tree. The Component AST never looks
// inside E values.
package node

import (
	"slices"
)

// RootIndex is the component index reserved for the unrendered root.
const RootIndex = -1

// Kind identifies the variant of a Component AST node.
type Kind uint8

// Node kinds.
const (
	KindText Kind = iota + 1
	KindComponent
)

// String returns the lower-case name of the kind.
func (kind Kind) String() string {
	switch kind {
	case KindText:
		return "text"
	case KindComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Node is a Component AST node. It is implemented only by *Text[E] and
// *Component[E]; consumers switch on the concrete type.
type Node[E any] interface {
	// Kind returns the variant tag of the node.
	Kind() Kind

	// Clone returns a structural copy of the node and its subtree.
	Clone() Node[E]

	sealed()
}

// Text is a leaf holding literal content. It is never split or merged.
type Text[E any] struct {
	Value string
}

// NewText creates a Text node.
func NewText[E any](value string) *Text[E] {
	return &Text[E]{Value: value}
}

// Kind returns KindText.
func (*Text[E]) Kind() Kind { return KindText }

// Clone returns a copy of the text node.
func (text *Text[E]) Clone() Node[E] {
	return &Text[E]{Value: text.Value}
}

func (*Text[E]) sealed() {}

// Component stands in for a chain of external nodes.
//
// Children is nil when the component has no children list at all (for
// example an escaped raw HTML leaf) and empty when the list is present but
// holds nothing. OriginalNodes follows the same convention; after
// flattening it lists every absorbed external node, outermost first.
type Component[E any] struct {
	Children      []Node[E]
	OriginalNodes []E
	Index         int
	Indexed       bool
}

// NewComponent creates an unnumbered component.
func NewComponent[E any](children []Node[E], originalNodes ...E) *Component[E] {
	return &Component[E]{
		Children:      children,
		OriginalNodes: originalNodes,
	}
}

// NewRoot creates a root component numbered RootIndex. The children list is
// always present, even when empty.
func NewRoot[E any](children ...Node[E]) *Component[E] {
	if children == nil {
		children = []Node[E]{}
	}

	return &Component[E]{
		Children: children,
		Index:    RootIndex,
		Indexed:  true,
	}
}

// WithIndex numbers the component and returns it.
func (component *Component[E]) WithIndex(index int) *Component[E] {
	component.Index = index
	component.Indexed = true

	return component
}

// Kind returns KindComponent.
func (*Component[E]) Kind() Kind { return KindComponent }

// Clone returns a structural copy of the component and its subtree. The
// OriginalNodes slice is copied; the external nodes it refers to are not.
func (component *Component[E]) Clone() Node[E] {
	return component.CloneComponent()
}

// CloneComponent is Clone with the concrete return type.
func (component *Component[E]) CloneComponent() *Component[E] {
	return &Component[E]{
		Children:      CloneChildren(component.Children),
		OriginalNodes: slices.Clone(component.OriginalNodes),
		Index:         component.Index,
		Indexed:       component.Indexed,
	}
}

func (*Component[E]) sealed() {}

// IsRoot reports whether the component carries the root sentinel index.
func (component *Component[E]) IsRoot() bool {
	return component.Indexed && component.Index == RootIndex
}

// HasChildren reports whether the component has at least one child.
func (component *Component[E]) HasChildren() bool {
	return len(component.Children) > 0
}

// ComponentIndex returns the index of the component, or ErrMissingIndex when
// it has not been numbered.
func (component *Component[E]) ComponentIndex() (int, error) {
	if !component.Indexed {
		return 0, ErrMissingIndex
	}

	return component.Index, nil
}

// CloneChildren copies a children list, keeping nil and empty lists apart.
func CloneChildren[E any](children []Node[E]) []Node[E] {
	if children == nil {
		return nil
	}

	cloned := make([]Node[E], len(children))
	for idx, child := range children {
		cloned[idx] = child.Clone()
	}

	return cloned
}

// AsComponent returns current as a component when it is one.
func AsComponent[E any](current Node[E]) (*Component[E], bool) {
	component, ok := current.(*Component[E])
	if !ok || component == nil {
		return nil, false
	}

	return component, true
}

// AsText returns current as a text node when it is one.
func AsText[E any](current Node[E]) (*Text[E], bool) {
	text, ok := current.(*Text[E])
	if !ok || text == nil {
		return nil, false
	}

	return text, true
}

// IsComponent reports whether current is a component node.
func IsComponent[E any](current Node[E]) bool {
	_, ok := AsComponent(current)

	return ok
}
