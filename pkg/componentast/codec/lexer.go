package codec

import (
	"strconv"
	"strings"
)

// TagKind is the shape of a placeholder tag.
type TagKind uint8

// Tag shapes.
const (
	TagOpen TagKind = iota + 1
	TagClose
	TagSelfClosing
)

// String returns the tag shape as written, with N standing for the index.
func (kind TagKind) String() string {
	switch kind {
	case TagOpen:
		return "<cN>"
	case TagClose:
		return "</cN>"
	case TagSelfClosing:
		return "<cN/>"
	default:
		return "unknown"
	}
}

// token is one placeholder tag found in the input. Start and end are byte
// offsets of the tag itself.
type token struct {
	kind  TagKind
	index int
	start int
	end   int
}

// lexer finds placeholder tags in an escaped string. Anything that is not a
// complete tag is literal text.
type lexer struct {
	input  string
	offset int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// next returns the next tag at or after the current offset and advances past
// it. It returns false when no further tag exists. Text between tags is left
// for the caller to slice out of the input.
func (scanner *lexer) next() (token, bool, error) {
	for scanner.offset < len(scanner.input) {
		relative := strings.IndexByte(scanner.input[scanner.offset:], '<')
		if relative < 0 {
			scanner.offset = len(scanner.input)

			return token{}, false, nil
		}

		start := scanner.offset + relative

		tok, matched, err := matchTag(scanner.input, start)
		if err != nil {
			return token{}, false, err
		}

		if matched {
			scanner.offset = tok.end

			return tok, true, nil
		}

		scanner.offset = start + 1
	}

	return token{}, false, nil
}

// matchTag matches one of <cN>, <cN/> or </cN> at start, where N is one or
// more ASCII digits.
func matchTag(input string, start int) (token, bool, error) {
	cursor := start + 1
	kind := TagOpen

	if cursor < len(input) && input[cursor] == '/' {
		kind = TagClose
		cursor++
	}

	if cursor >= len(input) || input[cursor] != 'c' {
		return token{}, false, nil
	}

	cursor++
	digitsStart := cursor

	for cursor < len(input) && isDigit(input[cursor]) {
		cursor++
	}

	if cursor == digitsStart {
		return token{}, false, nil
	}

	digits := input[digitsStart:cursor]

	if kind == TagOpen && cursor < len(input) && input[cursor] == '/' {
		kind = TagSelfClosing
		cursor++
	}

	if cursor >= len(input) || input[cursor] != '>' {
		return token{}, false, nil
	}

	index, err := strconv.Atoi(digits)
	if err != nil {
		return token{}, false, &ParseError{Err: ErrIndexOutOfRange, Position: start, Found: -1, Expected: -1}
	}

	return token{kind: kind, index: index, start: start, end: cursor + 1}, true, nil
}

func isDigit(char byte) bool {
	return char >= '0' && char <= '9'
}
