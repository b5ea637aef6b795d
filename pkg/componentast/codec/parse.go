package codec

import (
	"fmt"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// ParseComponentString rebuilds the numbered skeleton of a placeholder
// string. The result carries no original nodes; inject the payload before
// mapping it back.
//
// A self-closing tag and an opening tag closed right away both produce a
// component without children. Errors wrap ErrMalformedString and are
// reported as *ParseError.
func ParseComponentString[E any](input string) (*node.Component[E], error) {
	root := node.NewRoot[E]()
	stack := []*node.Component[E]{root}
	scanner := newLexer(input)
	position := 0

	for {
		tok, found, err := scanner.next()
		if err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]

		textEnd := len(input)
		if found {
			textEnd = tok.start
		}

		if textEnd > position {
			top.Children = append(top.Children, node.NewText[E](input[position:textEnd]))
		}

		if !found {
			break
		}

		position = tok.end

		switch tok.kind {
		case TagOpen:
			opened := &node.Component[E]{Index: tok.index, Indexed: true}
			top.Children = append(top.Children, opened)
			stack = append(stack, opened)
		case TagSelfClosing:
			top.Children = append(top.Children, &node.Component[E]{Index: tok.index, Indexed: true})
		case TagClose:
			if top.IsRoot() || top.Index != tok.index {
				return nil, &ParseError{
					Err:      ErrClosingTagMismatch,
					Position: tok.start,
					Expected: top.Index,
					Found:    tok.index,
				}
			}

			stack = stack[:len(stack)-1]
		default:
			return nil, fmt.Errorf("%w: unknown tag kind %d", ErrMalformedString, tok.kind)
		}
	}

	if len(stack) > 1 {
		return nil, &ParseError{
			Err:      ErrUnbalancedTags,
			Position: len(input),
			Expected: stack[len(stack)-1].Index,
			Found:    node.RootIndex,
		}
	}

	return root, nil
}
