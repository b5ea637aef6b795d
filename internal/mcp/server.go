// Package mcp exposes the escape pipeline as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/mdescape/internal/service"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
	"github.com/Sumatoshi-tech/mdescape/pkg/version"
)

const (
	serverName = "mdescape"
	toolCount  = 2

	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// ServerDeps holds injectable dependencies for the MCP server. Zero-value
// fields use defaults.
type ServerDeps struct {
	// Service runs the pipeline. Nil uses a service with fallback enabled.
	Service *service.Service
	Logger  *slog.Logger
	Metrics *observability.REDMetrics
	Tracer  trace.Tracer

	// MaxInputBytes bounds every string argument. Zero uses DefaultMaxInputBytes.
	MaxInputBytes int
}

// Server wraps the MCP SDK server with the mdescape tools.
type Server struct {
	inner    *mcpsdk.Server
	handlers *toolHandlers
	metrics  *observability.REDMetrics
	tracer   trace.Tracer
	tools    []string
	mu       sync.RWMutex
}

// NewServer creates a server with all tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	svc := deps.Service
	if svc == nil {
		svc = service.New(service.Options{Fallback: true, CheckLayout: true}, service.Deps{Logger: deps.Logger})
	}

	limit := deps.MaxInputBytes
	if limit <= 0 {
		limit = DefaultMaxInputBytes
	}

	srv := &Server{
		inner: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		}, opts),
		handlers: &toolHandlers{svc: svc, maxInputBytes: limit},
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		tools:    make([]string, 0, toolCount),
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := slices.Clone(s.tools)
	slices.Sort(names)

	return names
}

// Run serves on stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameEscape,
		Description: escapeToolDescription,
	}, withMetrics(s.metrics, ToolNameEscape, withTracing(s.tracer, ToolNameEscape, s.handlers.escape)))
	s.trackTool(ToolNameEscape)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameUnescape,
		Description: unescapeToolDescription,
	}, withMetrics(s.metrics, ToolNameUnescape, withTracing(s.tracer, ToolNameUnescape, s.handlers.unescape)))
	s.trackTool(ToolNameUnescape)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

type toolHandler[Input any] func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error)

// withTracing opens a span per call and appends the trace ID to sampled
// responses.
func withTracing[Input any](tracer trace.Tracer, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		spanCtx := span.SpanContext()
		if spanCtx.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: traceIDMetaKey + "=" + spanCtx.TraceID().String()})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per call. Tool-level failures count as
// errors.
func withMetrics[Input any](
	metrics *observability.REDMetrics, toolName string, handler toolHandler[Input],
) toolHandler[Input] {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		done := metrics.Track(ctx, mcpSpanPrefix+toolName)

		result, output, err := handler(ctx, req, input)

		outcome := err
		if outcome == nil && result != nil && result.IsError {
			outcome = errToolFailed
		}

		done(outcome)

		return result, output, err
	}
}

const (
	escapeToolDescription = "Escape a markdown AST (mdast JSON or YAML) for translation. " +
		"Formatting, links and other structure become numbered placeholders <cN>...</cN> or <cN/>. " +
		"Returns a bundle: the placeholder string to translate plus the data needed to restore it."

	unescapeToolDescription = "Restore a markdown AST from a translated placeholder string and the bundle " +
		"returned by mdescape_escape. Placeholders may be reordered or dropped. " +
		"Malformed translations fall back to the source tree and report the reason."
)
