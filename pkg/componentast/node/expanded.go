package node

import "fmt"

// Expanded is a Component AST in which every component stands in for exactly
// one external node. Only an expanded tree can be mapped back to the external
// tree; build one with Expand after payload injection and unflattening.
type Expanded[E any] struct {
	root *Component[E]
}

// Expand checks that every component of root carries exactly one original
// node and returns an owned copy of the tree.
func Expand[E any](root *Component[E]) (*Expanded[E], error) {
	if root == nil {
		return nil, fmt.Errorf("expand: %w: nil root", ErrUnexpectedNode)
	}

	checkErr := Walk[E](root, func(current Node[E], _ int) error {
		component, ok := AsComponent(current)
		if !ok {
			return nil
		}

		switch len(component.OriginalNodes) {
		case 1:
			return nil
		case 0:
			return describeComponentError(component, ErrMissingOriginalNodes)
		default:
			return describeComponentError(component, ErrMultipleOriginalNodes)
		}
	})
	if checkErr != nil {
		return nil, fmt.Errorf("expand: %w", checkErr)
	}

	return &Expanded[E]{root: root.CloneComponent()}, nil
}

// Root returns a copy of the expanded tree.
func (expanded *Expanded[E]) Root() *Component[E] {
	return expanded.root.CloneComponent()
}

func describeComponentError[E any](component *Component[E], err error) error {
	if !component.Indexed {
		return fmt.Errorf("unnumbered component: %w", err)
	}

	return fmt.Errorf("component %d: %w", component.Index, err)
}
