package mdast

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// ErrNilNode is returned when a nil node is handed to the mapper.
var ErrNilNode = errors.New("nil markdown node")

// Adapter gives the Component AST mapper access to markdown nodes.
type Adapter struct{}

// Children returns the children of a parent node.
func (Adapter) Children(mdNode *Node) ([]*Node, bool) {
	if !mdNode.IsParent() {
		return nil, false
	}

	return mdNode.Children, true
}

// ShallowClone copies a node without its descendants.
func (Adapter) ShallowClone(mdNode *Node) *Node {
	return mdNode.ShallowClone()
}

// WithChildren sets the children of a freshly cloned node.
func (Adapter) WithChildren(mdNode *Node, children []*Node) *Node {
	mdNode.Children = children

	return mdNode
}

// MapNode classifies one markdown node: parents become components with an
// empty children list, text becomes text, any other literal becomes a
// component without children.
func MapNode(mdNode *Node) (node.Node[*Node], error) {
	switch {
	case mdNode == nil:
		return nil, ErrNilNode
	case mdNode.IsParent():
		return node.NewComponent([]node.Node[*Node]{}, mdNode), nil
	case mdNode.Type == TypeText:
		return node.NewText[*Node](mdNode.Value), nil
	default:
		return node.NewComponent[*Node](nil, mdNode), nil
	}
}

// UnmapNode turns a Component AST node back into a markdown node. A
// component must carry exactly one original node.
func UnmapNode(current node.Node[*Node]) (*Node, error) {
	switch typed := current.(type) {
	case *node.Text[*Node]:
		return Text(typed.Value), nil
	case *node.Component[*Node]:
		switch len(typed.OriginalNodes) {
		case 0:
			return nil, node.ErrMissingOriginalNodes
		case 1:
			if typed.OriginalNodes[0] == nil {
				return nil, ErrNilNode
			}

			return typed.OriginalNodes[0], nil
		default:
			return nil, node.ErrMultipleOriginalNodes
		}
	default:
		return nil, fmt.Errorf("%w: %T", node.ErrUnexpectedNode, current)
	}
}

// NewEscaper returns an escaper for markdown trees.
func NewEscaper() *componentast.Escaper[*Node] {
	return componentast.NewEscaper[*Node](Adapter{}, MapNode, UnmapNode)
}
