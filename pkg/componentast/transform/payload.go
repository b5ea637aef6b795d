package transform

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// Payload errors.
var (
	// ErrMissingComponentData is returned by InjectComponentData when a
	// component index has no entry in the payload.
	ErrMissingComponentData = errors.New("missing component data")

	// ErrDuplicateIndex is returned by ExtractComponentData when two
	// components share an index.
	ErrDuplicateIndex = errors.New("duplicate component index")
)

// ComponentData maps a component index to the original nodes that the
// component stands in for. It is the side payload that travels next to the
// escaped string.
type ComponentData[E any] map[int][]E

// Indices returns the indices present in the payload in ascending order.
func (data ComponentData[E]) Indices() []int {
	return slices.Sorted(maps.Keys(data))
}

// ExtractComponentData collects the original nodes of every component of an
// enumerated tree, keyed by index. The root entry is included.
func ExtractComponentData[E any](tree *node.Component[E]) (ComponentData[E], error) {
	data := make(ComponentData[E])

	err := node.Walk[E](tree, func(current node.Node[E], _ int) error {
		component, ok := node.AsComponent(current)
		if !ok {
			return nil
		}

		index, indexErr := component.ComponentIndex()
		if indexErr != nil {
			return indexErr
		}

		if component.OriginalNodes == nil {
			return fmt.Errorf("component %d: %w", index, node.ErrMissingOriginalNodes)
		}

		if _, seen := data[index]; seen {
			return fmt.Errorf("%w: %d", ErrDuplicateIndex, index)
		}

		data[index] = slices.Clone(component.OriginalNodes)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extract component data: %w", err)
	}

	return data, nil
}

// StripComponentData returns a copy of tree with the original nodes of every
// component removed. Indices and structure are kept.
func StripComponentData[E any](tree *node.Component[E]) *node.Component[E] {
	stripped := tree.CloneComponent()

	for _, component := range node.Components[E](stripped) {
		component.OriginalNodes = nil
	}

	return stripped
}

// InjectComponentData returns a copy of tree in which every component has
// its original nodes restored from data. Unused payload entries are ignored.
func InjectComponentData[E any](tree *node.Component[E], data ComponentData[E]) (*node.Component[E], error) {
	injected := tree.CloneComponent()

	for _, component := range node.Components[E](injected) {
		index, err := component.ComponentIndex()
		if err != nil {
			return nil, fmt.Errorf("inject component data: %w", err)
		}

		originals, found := data[index]
		if !found {
			return nil, fmt.Errorf("inject component data: %w for component index %d", ErrMissingComponentData, index)
		}

		component.OriginalNodes = slices.Clone(originals)
	}

	return injected, nil
}
