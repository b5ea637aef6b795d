package transform_test

import (
	"math/rand/v2"
	"strconv"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
)

// treeGenerator builds random Component ASTs whose components each carry one
// uniquely labelled original node.
type treeGenerator struct {
	rng   *rand.Rand
	count int
}

func newTreeGenerator(seed uint64) *treeGenerator {
	return &treeGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (gen *treeGenerator) label() string {
	gen.count++

	return "n" + strconv.Itoa(gen.count)
}

func (gen *treeGenerator) text() node.Node[string] {
	return node.NewText[string]("t" + strconv.Itoa(gen.rng.IntN(100)))
}

func (gen *treeGenerator) component(depth int) *node.Component[string] {
	component := node.NewComponent[string](nil, gen.label())

	if depth == 0 {
		if gen.rng.IntN(2) == 0 {
			component.Children = []node.Node[string]{gen.text()}
		}

		return component
	}

	switch gen.rng.IntN(6) {
	case 0:
		component.Children = nil
	case 1:
		component.Children = []node.Node[string]{}
	case 2, 3:
		component.Children = []node.Node[string]{gen.component(depth - 1)}
	default:
		size := 1 + gen.rng.IntN(3)
		component.Children = make([]node.Node[string], 0, size)

		for range size {
			if gen.rng.IntN(3) == 0 {
				component.Children = append(component.Children, gen.text())

				continue
			}

			component.Children = append(component.Children, gen.component(depth-1))
		}
	}

	return component
}

// chain builds depth nested single-child components around a text leaf.
func chain(depth int) *node.Component[string] {
	var current node.Node[string] = node.NewText[string]("leaf")

	for level := depth; level >= 1; level-- {
		current = node.NewComponent([]node.Node[string]{current}, "c"+strconv.Itoa(level))
	}

	root, _ := node.AsComponent(current)

	return root
}
