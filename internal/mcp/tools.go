package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/mdescape/internal/service"
	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
)

// Tool names.
const (
	ToolNameEscape   = "mdescape_escape"
	ToolNameUnescape = "mdescape_unescape"
)

// DefaultMaxInputBytes bounds string arguments when no limit is configured.
const DefaultMaxInputBytes = 1 << 20

// Input validation errors.
var (
	ErrEmptyTree     = errors.New("tree parameter is required and must not be empty")
	ErrEmptyBundle   = errors.New("bundle parameter is required and must not be empty")
	ErrInputTooLarge = errors.New("input exceeds maximum size")
	errToolFailed    = errors.New("tool returned an error result")
)

// EscapeInput is the input schema of mdescape_escape.
type EscapeInput struct {
	Tree   string `json:"tree"             jsonschema:"markdown AST document (mdast) in JSON or YAML"`
	Format string `json:"format,omitempty" jsonschema:"tree format: json or yaml (default: detected)"`
}

// UnescapeInput is the input schema of mdescape_unescape.
type UnescapeInput struct {
	Bundle     string `json:"bundle"     jsonschema:"bundle returned by mdescape_escape (JSON or YAML)"`
	Translated string `json:"translated" jsonschema:"translation of the bundle's escaped string"`
}

// UnescapeOutput is the structured result of mdescape_unescape.
type UnescapeOutput struct {
	*service.Result

	Cause string `json:"cause,omitempty"`
}

// ToolOutput wraps tool results for structured output.
type ToolOutput struct {
	Data any `json:"data"`
}

type toolHandlers struct {
	svc           *service.Service
	maxInputBytes int
}

func (th *toolHandlers) escape(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input EscapeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := th.checkSize("tree", input.Tree)
	if err != nil {
		return errorResult(err)
	}

	if strings.TrimSpace(input.Tree) == "" {
		return errorResult(ErrEmptyTree)
	}

	format := mdast.DetectFormat([]byte(input.Tree))
	if input.Format != "" {
		format, err = mdast.ParseFormat(input.Format)
		if err != nil {
			return errorResult(err)
		}
	}

	tree, err := mdast.Unmarshal([]byte(input.Tree), format)
	if err != nil {
		return errorResult(fmt.Errorf("read tree: %w", err))
	}

	result, err := th.svc.Escape(ctx, tree)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(result)
}

func (th *toolHandlers) unescape(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input UnescapeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := th.checkSize("bundle", input.Bundle)
	if err != nil {
		return errorResult(err)
	}

	err = th.checkSize("translated", input.Translated)
	if err != nil {
		return errorResult(err)
	}

	if strings.TrimSpace(input.Bundle) == "" {
		return errorResult(ErrEmptyBundle)
	}

	source, err := bundle.Decode(strings.NewReader(input.Bundle))
	if err != nil {
		return errorResult(fmt.Errorf("read bundle: %w", err))
	}

	result, err := th.svc.Unescape(ctx, source, input.Translated)
	if err != nil {
		return errorResult(err)
	}

	output := UnescapeOutput{Result: result}
	if result.Cause != nil {
		output.Cause = result.Cause.Error()
	}

	return jsonResult(output)
}

func (th *toolHandlers) checkSize(name, value string) error {
	if len(value) > th.maxInputBytes {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrInputTooLarge, name, len(value), th.maxInputBytes)
	}

	return nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}
