package mdast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/mdescape/pkg/mdast/schema"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// yamlIndent is the indentation used when encoding YAML.
const yamlIndent = 2

// Format errors.
var (
	ErrUnknownFormat = errors.New("unknown document format")
	ErrEmptyDocument = errors.New("empty document")
)

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return "", false
	}

	return format, true
}

// DetectFormat guesses the format from content: JSON documents start with a
// brace or bracket, anything else is treated as YAML.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}

	return FormatYAML
}

// Unmarshal decodes a markdown tree and normalizes it.
func Unmarshal(data []byte, format Format) (*Node, error) {
	var root *Node

	switch format {
	case FormatJSON:
		err := json.Unmarshal(data, &root)
		if err != nil {
			return nil, fmt.Errorf("decode json tree: %w", err)
		}
	case FormatYAML:
		err := yaml.Unmarshal(data, &root)
		if err != nil {
			return nil, fmt.Errorf("decode yaml tree: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}

	return root.Normalize(), nil
}

// Marshal encodes a markdown tree.
func Marshal(root *Node, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json tree: %w", err)
		}

		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer

		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(yamlIndent)

		err := encoder.Encode(root)
		if err != nil {
			return nil, fmt.Errorf("encode yaml tree: %w", err)
		}

		err = encoder.Close()
		if err != nil {
			return nil, fmt.Errorf("encode yaml tree: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ValidationError is one schema violation.
type ValidationError struct {
	Field       string
	Description string
}

// String renders the violation as "field: description".
func (validationErr ValidationError) String() string {
	return validationErr.Field + ": " + validationErr.Description
}

// Validate checks a document against the embedded tree schema. It returns
// the violations found; the error is reserved for unreadable input.
func Validate(data []byte, format Format) ([]ValidationError, error) {
	var document any

	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()

		err := decoder.Decode(&document)
		if err != nil {
			return nil, fmt.Errorf("decode json tree: %w", err)
		}
	case FormatYAML:
		err := yaml.Unmarshal(data, &document)
		if err != nil {
			return nil, fmt.Errorf("decode yaml tree: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema.MdastSchema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("validate tree: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]ValidationError, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		violations = append(violations, ValidationError{
			Field:       resultErr.Field(),
			Description: resultErr.Description(),
		})
	}

	return violations, nil
}
