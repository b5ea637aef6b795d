package node

import "errors"

// Sentinel errors shared by every Component AST stage.
var (
	// ErrMissingIndex is returned when a stage needs a component index that
	// has not been assigned.
	ErrMissingIndex = errors.New("invalid tree state: component index is undefined")

	// ErrMissingOriginalNodes is returned when a component has no original
	// nodes where at least one is required.
	ErrMissingOriginalNodes = errors.New("invalid tree state: missing original nodes")

	// ErrMultipleOriginalNodes is returned when a component still holds more
	// than one original node at a point where the tree must be expanded.
	ErrMultipleOriginalNodes = errors.New("invalid tree state: multiple original nodes")

	// ErrUnexpectedNode is returned for a node that is neither Text nor Component.
	ErrUnexpectedNode = errors.New("unexpected node type")
)
