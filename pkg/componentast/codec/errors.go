package codec

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// ErrMalformedString is the parent of every error caused by the content of
// an escaped string. These usually come from a bad translation and can be
// recovered by falling back to the source text.
var ErrMalformedString = errors.New("malformed component string")

// Malformed string errors.
var (
	ErrClosingTagMismatch = fmt.Errorf("%w: closing component tag mismatch", ErrMalformedString)
	ErrUnbalancedTags     = fmt.Errorf("%w: unbalanced component tags", ErrMalformedString)
	ErrIndexOutOfRange    = fmt.Errorf("%w: component index out of range", ErrMalformedString)
)

// ParseError describes where parsing an escaped string failed.
type ParseError struct {
	// Err is one of the malformed string errors.
	Err error
	// Position is the byte offset of the offending tag, or the input length
	// for unbalanced tags.
	Position int
	// Expected is the index of the innermost open component, or
	// node.RootIndex when none is open.
	Expected int
	// Found is the index of the offending closing tag.
	Found int
}

// Error implements the error interface.
func (parseErr *ParseError) Error() string {
	switch {
	case errors.Is(parseErr.Err, ErrClosingTagMismatch) && parseErr.Expected == node.RootIndex:
		return fmt.Sprintf("closing component tag mismatch at position %d: no component is open but got </c%d>",
			parseErr.Position, parseErr.Found)
	case errors.Is(parseErr.Err, ErrClosingTagMismatch):
		return fmt.Sprintf("closing component tag mismatch at position %d: expected </c%d> but got </c%d>",
			parseErr.Position, parseErr.Expected, parseErr.Found)
	case errors.Is(parseErr.Err, ErrUnbalancedTags):
		return fmt.Sprintf("unbalanced component tags: failed to find closing tag for component %d",
			parseErr.Expected)
	case errors.Is(parseErr.Err, ErrIndexOutOfRange):
		return fmt.Sprintf("component index out of range at position %d", parseErr.Position)
	default:
		return fmt.Sprintf("%v at position %d", parseErr.Err, parseErr.Position)
	}
}

// Unwrap returns the underlying sentinel.
func (parseErr *ParseError) Unwrap() error {
	return parseErr.Err
}
