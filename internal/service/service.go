// Package service is the application layer shared by the CLI, the MCP tool
// server and the HTTP API: it escapes markdown trees into bundles and
// restores translated bundles, with logging, tracing and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/codec"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
	"github.com/Sumatoshi-tech/mdescape/pkg/safeconv"
)

// Operation names used for spans and RED metrics.
const (
	OpEscape   = "escape"
	OpUnescape = "unescape"
)

// Errors returned for invalid requests.
var (
	ErrNilTree   = errors.New("tree is required")
	ErrNilBundle = errors.New("bundle is required")
)

// Options controls pipeline behavior.
type Options struct {
	// Fallback returns the source tree for unusable translations instead
	// of failing.
	Fallback bool
	// CheckLayout compares the placeholders of each translation with the
	// source and attaches the report to the result.
	CheckLayout bool
}

// Deps holds injectable dependencies. Nil fields disable the concern.
type Deps struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	RED     *observability.REDMetrics
	Metrics *observability.EscapeMetrics
}

// Service escapes and unescapes markdown trees. It is safe for concurrent
// use.
type Service struct {
	escaper *componentast.Escaper[*mdast.Node]
	logger  *slog.Logger
	tracer  trace.Tracer
	red     *observability.REDMetrics
	metrics *observability.EscapeMetrics
	opts    Options
}

// New creates a Service.
func New(opts Options, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = observability.DiscardLogger()
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return &Service{
		escaper: mdast.NewEscaper(),
		logger:  logger,
		tracer:  tracer,
		red:     deps.RED,
		metrics: deps.Metrics,
		opts:    opts,
	}
}

// Result is the outcome of Unescape.
type Result struct {
	Tree *mdast.Node `json:"tree"`
	// Cause explains a fallback.
	Cause error `json:"-"`
	// Layout is set when layout checking is enabled.
	Layout   *codec.LayoutReport `json:"layout,omitempty"`
	FellBack bool                `json:"fell_back"`
}

// Escape converts tree into a bundle holding the placeholder string and the
// escaped nodes.
func (svc *Service) Escape(ctx context.Context, tree *mdast.Node) (result *bundle.Bundle, err error) {
	ctx, span := svc.tracer.Start(ctx, "mdescape."+OpEscape)
	defer span.End()

	done := svc.red.Track(ctx, OpEscape)
	defer func() { done(err) }()

	if tree == nil {
		return nil, recordError(span, ErrNilTree)
	}

	escaped, err := svc.escaper.Escape(tree)
	if err != nil {
		svc.logger.ErrorContext(ctx, "escape failed", "error", err)

		return nil, recordError(span, err)
	}

	components := escaped.Components()

	span.SetAttributes(
		attribute.Int("mdescape.components", components),
		attribute.Int("mdescape.escaped_bytes", len(escaped.String)),
	)

	svc.metrics.RecordEscape(ctx, observability.EscapeStats{
		Components:   components,
		EscapedBytes: len(escaped.String),
	})

	svc.logger.DebugContext(ctx, "tree escaped",
		"components", components,
		"escaped_size", humanize.Bytes(safeconv.MustIntToUint64(len(escaped.String))),
	)

	return bundle.FromEscaped(escaped), nil
}

// Unescape rebuilds a tree from a translated placeholder string and the
// bundle produced for its source. Unusable translations fall back to the
// source tree when Options.Fallback is set; otherwise the translation error
// is returned.
func (svc *Service) Unescape(ctx context.Context, source *bundle.Bundle, translated string) (result *Result, err error) {
	ctx, span := svc.tracer.Start(ctx, "mdescape."+OpUnescape)
	defer span.End()

	done := svc.red.Track(ctx, OpUnescape)
	defer func() { done(err) }()

	if source == nil {
		return nil, recordError(span, ErrNilBundle)
	}

	err = source.Validate()
	if err != nil {
		return nil, recordError(span, err)
	}

	var layout *codec.LayoutReport

	if svc.opts.CheckLayout {
		layout = svc.checkLayout(ctx, source.Escaped, translated)
	}

	mismatch := layout != nil && !layout.Clean()

	tree, err := svc.escaper.Unescape(translated, source.Data())
	if err == nil {
		svc.metrics.RecordUnescape(ctx, observability.OutcomeRestored, mismatch)

		return &Result{Tree: tree, Layout: layout}, nil
	}

	if !componentast.IsTranslationError(err) || !svc.opts.Fallback {
		if componentast.IsTranslationError(err) {
			svc.metrics.RecordUnescape(ctx, observability.OutcomeMalformed, mismatch)
		}

		svc.logger.WarnContext(ctx, "unescape failed", "error", err)

		return nil, recordError(span, err)
	}

	fallback, sourceErr := svc.Source(source)
	if sourceErr != nil {
		return nil, recordError(span, fmt.Errorf("rebuild source after %w: %w", err, sourceErr))
	}

	svc.metrics.RecordUnescape(ctx, observability.OutcomeFallback, mismatch)
	span.AddEvent("fallback", trace.WithAttributes(attribute.String("cause", err.Error())))
	svc.logger.WarnContext(ctx, "translation rejected, using source", "error", err)

	return &Result{Tree: fallback, FellBack: true, Cause: err, Layout: layout}, nil
}

// Source rebuilds the untranslated tree a bundle was escaped from.
func (svc *Service) Source(source *bundle.Bundle) (*mdast.Node, error) {
	tree, err := svc.escaper.Unescape(source.Escaped, source.Data())
	if err != nil {
		return nil, fmt.Errorf("rebuild source: %w", err)
	}

	return tree, nil
}

// Ready reports whether the service can handle requests.
func (svc *Service) Ready(context.Context) error {
	if svc == nil || svc.escaper == nil {
		return errors.New("escape service not initialized")
	}

	return nil
}

func (svc *Service) checkLayout(ctx context.Context, source, translated string) *codec.LayoutReport {
	report, err := codec.CompareLayouts(source, translated)
	if err != nil {
		// Unreadable tags surface again, with position, when parsing.
		return nil
	}

	if !report.Clean() {
		svc.logger.InfoContext(ctx, "translation placeholders differ from source",
			"missing", report.Missing,
			"unknown", report.Unknown,
			"duplicated", report.Duplicated,
			"reshaped", report.Reshaped,
		)
	}

	return &report
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}
