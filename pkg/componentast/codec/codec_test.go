package codec_test

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/codec"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

type (
	tnode = node.Node[string]
	comp  = node.Component[string]
)

// alien satisfies node.Node without being one of its variants.
type alien struct {
	*node.Text[string]
}

func txt(value string) tnode { return node.NewText[string](value) }

func indexed(index int, children ...tnode) *comp {
	return node.NewComponent[string](children).WithIndex(index)
}

func root(children ...tnode) *comp { return node.NewRoot[string](children...) }

func TestStringifyComponentTree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree tnode
		want string
	}{
		{
			name: "component then text",
			tree: root(indexed(0, txt("pizza")), txt(" spaghetti")),
			want: "<c0>pizza</c0> spaghetti",
		},
		{
			name: "empty root renders nothing",
			tree: root(),
			want: "",
		},
		{
			name: "component without children list is self-closing",
			tree: root(txt("a"), indexed(0), txt("b")),
			want: "a<c0/>b",
		},
		{
			name: "component with empty children is self-closing",
			tree: root(node.NewComponent([]tnode{}, "strong").WithIndex(3)),
			want: "<c3/>",
		},
		{
			name: "nested components",
			tree: root(
				txt("Click "),
				indexed(0, txt("the "), indexed(1, txt("big")), txt(" button")),
				txt("."),
			),
			want: "Click <c0>the <c1>big</c1> button</c0>.",
		},
		{
			name: "tag-like text is written verbatim",
			tree: root(txt("1 < 2 and <b>")),
			want: "1 < 2 and <b>",
		},
		{
			name: "text node alone",
			tree: txt("plain"),
			want: "plain",
		},
		{
			name: "non-root component renders its own tags",
			tree: indexed(7, txt("x")),
			want: "<c7>x</c7>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := codec.StringifyComponentTree(tt.tree)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringifyComponentTreeErrors(t *testing.T) {
	t.Parallel()

	_, err := codec.StringifyComponentTree[string](root(node.NewComponent[string](nil, "html")))
	require.ErrorIs(t, err, node.ErrMissingIndex)

	_, err = codec.StringifyComponentTree[string](root(alien{node.NewText[string]("x")}))
	require.ErrorIs(t, err, node.ErrUnexpectedNode)
}

func TestParseComponentString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  *comp
	}{
		{
			name:  "component then text",
			input: "<c0>pizza</c0> spaghetti",
			want:  root(indexed(0, txt("pizza")), txt(" spaghetti")),
		},
		{
			name:  "empty string",
			input: "",
			want:  root(),
		},
		{
			name:  "self-closing tag has no children",
			input: "a<c0/>b",
			want:  root(txt("a"), indexed(0), txt("b")),
		},
		{
			name:  "immediately closed tag has no children",
			input: "<c4></c4>",
			want:  root(indexed(4)),
		},
		{
			name:  "nested components",
			input: "Click <c0>the <c1>big</c1> button</c0>.",
			want: root(
				txt("Click "),
				indexed(0, txt("the "), indexed(1, txt("big")), txt(" button")),
				txt("."),
			),
		},
		{
			name:  "multi-digit index",
			input: "<c12>x</c12>",
			want:  root(indexed(12, txt("x"))),
		},
		{
			name:  "leading zeros are read as decimal",
			input: "<c007/>",
			want:  root(indexed(7)),
		},
		{
			name:  "shapes outside the grammar are text",
			input: "<c> <cx> <C0> < c0> <c0 > </c0/> <c-1> a<b",
			want:  root(txt("<c> <cx> <C0> < c0> <c0 > </c0/> <c-1> a<b")),
		},
		{
			name:  "trailing open bracket",
			input: "x<",
			want:  root(txt("x<")),
		},
		{
			name:  "bracket right before a tag",
			input: "<<c0/>",
			want:  root(txt("<"), indexed(0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := codec.ParseComponentString[string](tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseComponentStringErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantPos  int
		wantText string
	}{
		{
			name:     "closing tag mismatch",
			input:    "<c0>text</c1>",
			wantErr:  codec.ErrClosingTagMismatch,
			wantPos:  8,
			wantText: "expected </c0> but got </c1>",
		},
		{
			name:     "unbalanced tags",
			input:    "<c0>text",
			wantErr:  codec.ErrUnbalancedTags,
			wantPos:  8,
			wantText: "failed to find closing tag for component 0",
		},
		{
			name:     "closing tag with nothing open",
			input:    "text</c0>",
			wantErr:  codec.ErrClosingTagMismatch,
			wantPos:  4,
			wantText: "no component is open",
		},
		{
			name:     "crossed tags",
			input:    "<c0><c1>a</c0></c1>",
			wantErr:  codec.ErrClosingTagMismatch,
			wantPos:  9,
			wantText: "expected </c1> but got </c0>",
		},
		{
			name:     "innermost unclosed tag is reported",
			input:    "<c0><c1>a",
			wantErr:  codec.ErrUnbalancedTags,
			wantPos:  9,
			wantText: "component 1",
		},
		{
			name:     "index overflow",
			input:    "<c99999999999999999999999/>",
			wantErr:  codec.ErrIndexOutOfRange,
			wantPos:  0,
			wantText: "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := codec.ParseComponentString[string](tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, codec.ErrMalformedString)

			var parseErr *codec.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantPos, parseErr.Position)
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestSelfClosingCorrectness(t *testing.T) {
	t.Parallel()

	for _, children := range [][]tnode{nil, {}} {
		tree := root(node.NewComponent(children).WithIndex(0))

		rendered, err := codec.StringifyComponentTree[string](tree)
		require.NoError(t, err)
		assert.Equal(t, "<c0/>", rendered)

		parsed, err := codec.ParseComponentString[string](rendered)
		require.NoError(t, err)

		component, ok := node.AsComponent(parsed.Children[0])
		require.True(t, ok)
		assert.Nil(t, component.Children)
	}
}

// skeletonGenerator builds random numbered skeletons in the canonical form
// the parser produces: no empty or adjacent text nodes and nil children on
// childless components.
type skeletonGenerator struct {
	rng  *rand.Rand
	next int
}

func (gen *skeletonGenerator) children(depth int) []tnode {
	size := gen.rng.IntN(4)

	var children []tnode

	lastWasText := false

	for range size {
		if !lastWasText && gen.rng.IntN(3) == 0 {
			children = append(children, txt("t"+strconv.Itoa(gen.rng.IntN(10))+" "))
			lastWasText = true

			continue
		}

		component := node.NewComponent[string](nil).WithIndex(gen.next)
		gen.next++

		if depth > 0 {
			component.Children = gen.children(depth - 1)
		}

		children = append(children, component)
		lastWasText = false
	}

	return children
}

func TestParseInvertsStringify(t *testing.T) {
	t.Parallel()

	for seed := range uint64(200) {
		gen := &skeletonGenerator{rng: rand.New(rand.NewPCG(seed, 7))}
		skeleton := root(gen.children(4)...)

		rendered, err := codec.StringifyComponentTree[string](skeleton)
		require.NoError(t, err)

		parsed, err := codec.ParseComponentString[string](rendered)
		require.NoError(t, err)

		require.Equal(t, skeleton, parsed, "seed %d: %s", seed, rendered)

		again, err := codec.StringifyComponentTree[string](parsed)
		require.NoError(t, err)
		require.Equal(t, rendered, again)
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	got, err := codec.Placeholders("a<c0>b<c1/></c0> <c")
	require.NoError(t, err)

	assert.Equal(t, []codec.Placeholder{
		{Kind: codec.TagOpen, Index: 0, Position: 1},
		{Kind: codec.TagSelfClosing, Index: 1, Position: 6},
		{Kind: codec.TagClose, Index: 0, Position: 11},
	}, got)

	none, err := codec.Placeholders("no tags")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFormatTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<c3>", codec.FormatTag(codec.TagOpen, 3))
	assert.Equal(t, "</c3>", codec.FormatTag(codec.TagClose, 3))
	assert.Equal(t, "<c3/>", codec.FormatTag(codec.TagSelfClosing, 3))
	assert.Equal(t, "<cN/>", codec.TagSelfClosing.String())
}

func TestCompareLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		source     string
		translated string
		want       codec.LayoutReport
		clean      bool
	}{
		{
			name:       "reordered components are fine",
			source:     "<c0>a</c0> and <c1/>",
			translated: "<c1/> und <c0>a</c0>",
			clean:      true,
		},
		{
			name:       "missing component",
			source:     "<c0>a</c0> and <c1/>",
			translated: "<c0>a</c0>",
			want:       codec.LayoutReport{Missing: []int{1}},
		},
		{
			name:       "unknown component",
			source:     "<c0>a</c0>",
			translated: "<c0>a</c0><c5/>",
			want:       codec.LayoutReport{Unknown: []int{5}},
		},
		{
			name:       "duplicated component",
			source:     "<c0/>",
			translated: "<c0/><c0/>",
			want:       codec.LayoutReport{Duplicated: []int{0}},
		},
		{
			name:       "self-closing component opened as a pair",
			source:     "a <c0/> b <c1>c</c1>",
			translated: "a <c0>inside</c0> b <c1>c</c1>",
			want:       codec.LayoutReport{Reshaped: []int{0}},
		},
		{
			name:       "pair written as self-closing",
			source:     "<c0>a</c0>",
			translated: "<c0/>",
			want:       codec.LayoutReport{Reshaped: []int{0}},
		},
		{
			name:       "duplicate in another shape",
			source:     "<c0/>",
			translated: "<c0/><c0>x</c0>",
			want:       codec.LayoutReport{Duplicated: []int{0}, Reshaped: []int{0}},
		},
		{
			name:       "shape used by the source is fine",
			source:     "<c0/> and <c0>a</c0>",
			translated: "<c0>b</c0> and <c0/>",
			clean:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := codec.CompareLayouts(tt.source, tt.translated)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.clean, got.Clean())
		})
	}
}
