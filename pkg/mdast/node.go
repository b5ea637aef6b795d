// Package mdast provides a markdown syntax tree and binds it to the
// Component AST escaper.
//
// The tree follows the mdast vocabulary: parent nodes have an ordered
// children list, literal nodes carry a value. Node-specific fields such as
// a link URL or a heading depth live in Props.
package mdast

import (
	"maps"
)

// Type is the node type name.
type Type string

// Node types.
const (
	TypeRoot               Type = "root"
	TypeParagraph          Type = "paragraph"
	TypeHeading            Type = "heading"
	TypeThematicBreak      Type = "thematicBreak"
	TypeBlockquote         Type = "blockquote"
	TypeList               Type = "list"
	TypeListItem           Type = "listItem"
	TypeTable              Type = "table"
	TypeTableRow           Type = "tableRow"
	TypeTableCell          Type = "tableCell"
	TypeHTML               Type = "html"
	TypeCode               Type = "code"
	TypeDefinition         Type = "definition"
	TypeFootnoteDefinition Type = "footnoteDefinition"
	TypeText               Type = "text"
	TypeEmphasis           Type = "emphasis"
	TypeStrong             Type = "strong"
	TypeDelete             Type = "delete"
	TypeUnderline          Type = "underline"
	TypeColor              Type = "color"
	TypeInlineCode         Type = "inlineCode"
	TypeBreak              Type = "break"
	TypeLink               Type = "link"
	TypeImage              Type = "image"
	TypeLinkReference      Type = "linkReference"
	TypeImageReference     Type = "imageReference"
	TypeFootnoteReference  Type = "footnoteReference"
)

// parentTypes lists the known types that always have a children list.
var parentTypes = map[Type]bool{
	TypeRoot:               true,
	TypeParagraph:          true,
	TypeHeading:            true,
	TypeBlockquote:         true,
	TypeList:               true,
	TypeListItem:           true,
	TypeTable:              true,
	TypeTableRow:           true,
	TypeTableCell:          true,
	TypeFootnoteDefinition: true,
	TypeEmphasis:           true,
	TypeStrong:             true,
	TypeDelete:             true,
	TypeUnderline:          true,
	TypeColor:              true,
	TypeLink:               true,
	TypeLinkReference:      true,
}

// literalTypes lists the known types that never have a children list.
var literalTypes = map[Type]bool{
	TypeThematicBreak:     true,
	TypeHTML:              true,
	TypeCode:              true,
	TypeDefinition:        true,
	TypeText:              true,
	TypeInlineCode:        true,
	TypeBreak:             true,
	TypeImage:             true,
	TypeImageReference:    true,
	TypeFootnoteReference: true,
}

// Node is one markdown syntax tree node.
type Node struct {
	Props    map[string]string `json:"props,omitempty" yaml:"props,omitempty"`
	Type     Type              `json:"type" yaml:"type"`
	Value    string            `json:"value,omitempty" yaml:"value,omitempty"`
	Children []*Node           `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsParent reports whether the node has a children list. Known types decide
// by type; unknown types by whether Children is set.
func (mdNode *Node) IsParent() bool {
	if parentTypes[mdNode.Type] {
		return true
	}

	if literalTypes[mdNode.Type] {
		return false
	}

	return mdNode.Children != nil
}

// IsKnownType reports whether t is part of the built-in vocabulary.
func IsKnownType(t Type) bool {
	return parentTypes[t] || literalTypes[t]
}

// Clone returns a deep copy of the node.
func (mdNode *Node) Clone() *Node {
	clone := mdNode.ShallowClone()

	for _, child := range mdNode.Children {
		clone.Children = append(clone.Children, child.Clone())
	}

	return clone
}

// ShallowClone copies the node without its descendants. Parents get an
// empty children list.
func (mdNode *Node) ShallowClone() *Node {
	clone := &Node{
		Type:  mdNode.Type,
		Value: mdNode.Value,
		Props: maps.Clone(mdNode.Props),
	}

	if mdNode.IsParent() {
		clone.Children = []*Node{}
	}

	return clone
}

// Normalize gives every parent of the tree a non-nil children list and drops
// empty props, in place. Decoders call it so that decoded trees compare equal
// to built ones.
func (mdNode *Node) Normalize() *Node {
	if len(mdNode.Props) == 0 {
		mdNode.Props = nil
	}

	if mdNode.IsParent() && mdNode.Children == nil {
		mdNode.Children = []*Node{}
	}

	for _, child := range mdNode.Children {
		if child != nil {
			child.Normalize()
		}
	}

	return mdNode
}

// Prop returns a property value.
func (mdNode *Node) Prop(key string) string {
	return mdNode.Props[key]
}

// Parent creates a parent node.
func Parent(t Type, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}

	return &Node{Type: t, Children: children}
}

// Literal creates a node without children.
func Literal(t Type, value string) *Node {
	return &Node{Type: t, Value: value}
}

// Text creates a text node.
func Text(value string) *Node {
	return Literal(TypeText, value)
}

// Root creates a root node.
func Root(children ...*Node) *Node {
	return Parent(TypeRoot, children...)
}

// WithProp sets a property and returns the node.
func (mdNode *Node) WithProp(key, value string) *Node {
	if mdNode.Props == nil {
		mdNode.Props = make(map[string]string)
	}

	mdNode.Props[key] = value

	return mdNode
}
