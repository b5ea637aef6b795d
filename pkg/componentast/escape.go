// Package componentast escapes structural subtrees of a document tree into
// numbered placeholder tags so that only human-readable text reaches a
// translator, and rebuilds the tree from a translated string.
//
// Escape runs map, flatten, enumerate, extract and stringify. Unescape runs
// parse, inject, unflatten, expand and unmap. The side payload returned by
// Escape must be handed back to Unescape unchanged.
package componentast

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/codec"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/mapping"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/node"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/transform"
)

// Escaped is the result of escaping one tree.
type Escaped[E any] struct {
	// String is the placeholder string shown to translators.
	String string
	// Data holds the original nodes per component index, root included.
	Data transform.ComponentData[E]
	// Skeleton is the numbered, payload-free Component AST behind String.
	Skeleton *node.Component[E]
}

// Components returns the number of placeholders in the escaped string.
func (escaped *Escaped[E]) Components() int {
	return node.CountComponents[E](escaped.Skeleton)
}

// Unescaped is the result of UnescapeOrFallback.
type Unescaped[E any] struct {
	// Tree is the rebuilt tree, or the source tree after a fallback.
	Tree E
	// FellBack is true when the translation was rejected.
	FellBack bool
	// Cause is the translation error that triggered the fallback.
	Cause error
}

// Escaper runs the escape pipeline for one external tree type.
type Escaper[E any] struct {
	adapter mapping.Adapter[E]
	mapFn   mapping.MapFunc[E]
	unmapFn mapping.UnmapFunc[E]
}

// NewEscaper creates an Escaper from the external tree callbacks.
func NewEscaper[E any](adapter mapping.Adapter[E], mapFn mapping.MapFunc[E], unmapFn mapping.UnmapFunc[E]) *Escaper[E] {
	return &Escaper[E]{
		adapter: adapter,
		mapFn:   mapFn,
		unmapFn: unmapFn,
	}
}

// Escape converts tree into a placeholder string and its payload. The tree
// is not modified.
func (escaper *Escaper[E]) Escape(tree E) (*Escaped[E], error) {
	mapped, err := mapping.MapToComponentAst(tree, escaper.adapter, escaper.mapFn)
	if err != nil {
		return nil, fmt.Errorf("escape: %w", err)
	}

	flattened, err := transform.FlattenComponentTree(mapped)
	if err != nil {
		return nil, fmt.Errorf("escape: %w", err)
	}

	enumerated := transform.EnumerateComponents(flattened)

	data, err := transform.ExtractComponentData(enumerated)
	if err != nil {
		return nil, fmt.Errorf("escape: %w", err)
	}

	skeleton := transform.StripComponentData(enumerated)

	rendered, err := codec.StringifyComponentTree[E](skeleton)
	if err != nil {
		return nil, fmt.Errorf("escape: %w", err)
	}

	return &Escaped[E]{
		String:   rendered,
		Data:     data,
		Skeleton: skeleton,
	}, nil
}

// Unescape rebuilds a tree from a placeholder string and the payload that
// Escape produced for its source.
func (escaper *Escaper[E]) Unescape(escaped string, data transform.ComponentData[E]) (E, error) {
	var zero E

	skeleton, err := codec.ParseComponentString[E](escaped)
	if err != nil {
		return zero, fmt.Errorf("unescape: %w", err)
	}

	injected, err := transform.InjectComponentData(skeleton, data)
	if err != nil {
		return zero, fmt.Errorf("unescape: %w", err)
	}

	unflattened, err := transform.UnflattenComponentTree(injected)
	if err != nil {
		return zero, fmt.Errorf("unescape: %w", err)
	}

	expanded, err := node.Expand(unflattened)
	if err != nil {
		return zero, fmt.Errorf("unescape: %w", err)
	}

	tree, err := mapping.MapFromComponentAst(expanded, escaper.adapter, escaper.unmapFn)
	if err != nil {
		return zero, fmt.Errorf("unescape: %w", err)
	}

	return tree, nil
}

// UnescapeOrFallback is Unescape for translated strings. When the
// translation is unusable (see IsTranslationError) it returns source with
// FellBack set instead of failing. Any other error is returned as is.
func (escaper *Escaper[E]) UnescapeOrFallback(translated string, data transform.ComponentData[E], source E) (Unescaped[E], error) {
	tree, err := escaper.Unescape(translated, data)
	if err == nil {
		return Unescaped[E]{Tree: tree}, nil
	}

	if !IsTranslationError(err) {
		return Unescaped[E]{}, err
	}

	return Unescaped[E]{Tree: source, FellBack: true, Cause: err}, nil
}

// IsTranslationError reports whether err was caused by the content of a
// translated string rather than by the caller: malformed tags, a reference
// to a component the payload does not know, or content placed inside a
// component that cannot hold any.
func IsTranslationError(err error) bool {
	return errors.Is(err, codec.ErrMalformedString) ||
		errors.Is(err, transform.ErrMissingComponentData) ||
		errors.Is(err, mapping.ErrLeafWithChildren)
}
