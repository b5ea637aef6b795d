package node //nolint:testpackage // Tests the sealed interface from inside the package.

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct{}

func (fakeNode) Kind() Kind          { return Kind(0) }
func (fakeNode) Clone() Node[string] { return fakeNode{} }
func (fakeNode) sealed()             {}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "component", KindComponent.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestNewRoot(t *testing.T) {
	t.Parallel()

	root := NewRoot[string]()

	assert.True(t, root.IsRoot())
	assert.NotNil(t, root.Children)
	assert.Empty(t, root.Children)
	assert.Nil(t, root.OriginalNodes)
}

func TestComponentIndex(t *testing.T) {
	t.Parallel()

	unnumbered := NewComponent[string](nil, "html")

	_, err := unnumbered.ComponentIndex()
	require.ErrorIs(t, err, ErrMissingIndex)

	index, err := unnumbered.WithIndex(3).ComponentIndex()
	require.NoError(t, err)
	assert.Equal(t, 3, index)
	assert.False(t, unnumbered.IsRoot())
}

func TestCloneKeepsNilAndEmptyApart(t *testing.T) {
	t.Parallel()

	leaf := NewComponent[string](nil, "html")
	empty := NewComponent[string]([]Node[string]{}, "emphasis")
	root := NewRoot[string](leaf, empty, NewText[string]("tail"))

	cloned, ok := AsComponent(root.Clone())
	require.True(t, ok)

	assert.Equal(t, root, cloned)

	clonedLeaf, ok := AsComponent(cloned.Children[0])
	require.True(t, ok)
	assert.Nil(t, clonedLeaf.Children)

	clonedEmpty, ok := AsComponent(cloned.Children[1])
	require.True(t, ok)
	assert.NotNil(t, clonedEmpty.Children)
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	inner := NewComponent[string]([]Node[string]{NewText[string]("a")}, "strong")
	root := NewRoot[string](inner)

	cloned := root.CloneComponent()

	clonedInner, ok := AsComponent(cloned.Children[0])
	require.True(t, ok)

	clonedInner.OriginalNodes[0] = "emphasis"
	clonedInner.Children[0].(*Text[string]).Value = "b"

	assert.Equal(t, "strong", inner.OriginalNodes[0])
	assert.Equal(t, "a", inner.Children[0].(*Text[string]).Value)
}

func TestAsComponentAndAsText(t *testing.T) {
	t.Parallel()

	var nilComponent *Component[string]

	tests := []struct {
		name          string
		node          Node[string]
		wantComponent bool
		wantText      bool
	}{
		{name: "component", node: NewComponent[string](nil, "x"), wantComponent: true},
		{name: "text", node: NewText[string]("x"), wantText: true},
		{name: "nil component pointer", node: nilComponent},
		{name: "nil interface", node: nil},
		{name: "foreign implementation", node: fakeNode{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, isComponent := AsComponent(tt.node)
			_, isText := AsText(tt.node)

			assert.Equal(t, tt.wantComponent, isComponent)
			assert.Equal(t, tt.wantText, isText)
			assert.Equal(t, tt.wantComponent, IsComponent(tt.node))
		})
	}
}

func TestWalkPreOrder(t *testing.T) {
	t.Parallel()

	root := NewRoot[string](
		NewComponent[string]([]Node[string]{NewText[string]("a")}, "p").WithIndex(0),
		NewComponent[string](nil, "br").WithIndex(1),
	)

	var visited []string

	err := Walk[string](root, func(current Node[string], depth int) error {
		switch typed := current.(type) {
		case *Text[string]:
			visited = append(visited, typed.Value)
		case *Component[string]:
			if typed.IsRoot() {
				visited = append(visited, "root")
			} else {
				visited = append(visited, typed.OriginalNodes[0])
			}
		}

		if depth > 2 {
			return errors.New("too deep")
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"root", "p", "a", "br"}, visited)
	assert.Equal(t, 2, CountComponents[string](root))
}

func TestWalkSkipChildren(t *testing.T) {
	t.Parallel()

	root := NewRoot[string](
		NewComponent[string]([]Node[string]{NewText[string]("hidden")}, "p"),
	)

	var texts int

	err := Walk[string](root, func(current Node[string], depth int) error {
		if _, ok := AsText(current); ok {
			texts++
		}

		if depth == 1 {
			return ErrSkipChildren
		}

		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, texts)
}

func TestWalkRejectsForeignNodes(t *testing.T) {
	t.Parallel()

	root := NewRoot[string](fakeNode{})

	err := Walk[string](root, func(Node[string], int) error { return nil })

	require.ErrorIs(t, err, ErrUnexpectedNode)
}

func TestExpand(t *testing.T) {
	t.Parallel()

	t.Run("single originals", func(t *testing.T) {
		t.Parallel()

		root := NewComponent[string]([]Node[string]{
			NewComponent[string](nil, "html").WithIndex(0),
		}, "root").WithIndex(RootIndex)

		expanded, err := Expand(root)
		require.NoError(t, err)
		assert.Equal(t, root, expanded.Root())
		assert.NotSame(t, root, expanded.Root())
	})

	t.Run("multiple originals", func(t *testing.T) {
		t.Parallel()

		root := NewComponent[string]([]Node[string]{
			NewComponent[string](nil, "link", "emphasis").WithIndex(0),
		}, "root").WithIndex(RootIndex)

		_, err := Expand(root)
		require.ErrorIs(t, err, ErrMultipleOriginalNodes)
		assert.Contains(t, err.Error(), "component 0")
	})

	t.Run("missing originals", func(t *testing.T) {
		t.Parallel()

		_, err := Expand(NewRoot[string]())
		require.ErrorIs(t, err, ErrMissingOriginalNodes)
	})

	t.Run("nil root", func(t *testing.T) {
		t.Parallel()

		_, err := Expand[string](nil)
		require.ErrorIs(t, err, ErrUnexpectedNode)
	})
}

func TestSprint(t *testing.T) {
	t.Parallel()

	root := NewRoot[string](
		NewText[string]("Hello "),
		NewComponent[string]([]Node[string]{NewText[string]("world")}, "strong", "emphasis").WithIndex(0),
		NewComponent[string](nil, "break"),
	)

	want := "component -1 []\n" +
		"  text \"Hello \"\n" +
		"  component 0 [strong > emphasis]\n" +
		"    text \"world\"\n" +
		"  component ? [break] (leaf)\n"

	assert.Equal(t, want, Sprint[string](root, nil))
}
