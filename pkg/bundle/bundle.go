// Package bundle serializes an escaped string together with its component
// payload so that both can cross a process boundary, for example to a
// translation system and back.
package bundle

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/mdescape/pkg/componentast"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/transform"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
)

// Version is the bundle format version written by Encode.
const Version = 1

// lz4Magic is the little-endian LZ4 frame magic number.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// Bundle errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported bundle version")
	ErrMissingRoot        = errors.New("bundle has no root component data")
)

// Bundle is an escaped string with the original nodes of its components.
type Bundle struct {
	Components map[int][]*mdast.Node `json:"components" yaml:"components"`
	Escaped    string                `json:"escaped" yaml:"escaped"`
	Version    int                   `json:"version" yaml:"version"`
}

// FromEscaped builds a bundle from an escape result.
func FromEscaped(escaped *componentast.Escaped[*mdast.Node]) *Bundle {
	components := make(map[int][]*mdast.Node, len(escaped.Data))

	for index, originals := range escaped.Data {
		cloned := make([]*mdast.Node, len(originals))
		for position, original := range originals {
			cloned[position] = original.Clone()
		}

		components[index] = cloned
	}

	return &Bundle{
		Version:    Version,
		Escaped:    escaped.String,
		Components: components,
	}
}

// Data returns the component payload in the form Unescape expects.
func (bundle *Bundle) Data() transform.ComponentData[*mdast.Node] {
	data := make(transform.ComponentData[*mdast.Node], len(bundle.Components))

	for index, originals := range bundle.Components {
		data[index] = originals
	}

	return data
}

// Validate checks the bundle header and payload.
func (bundle *Bundle) Validate() error {
	if bundle.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, bundle.Version)
	}

	if len(bundle.Components[-1]) == 0 {
		return ErrMissingRoot
	}

	return nil
}

// Options controls encoding.
type Options struct {
	Format   mdast.Format
	Compress bool
}

// Encode writes the bundle. Compressed bundles are wrapped in an LZ4 frame.
func Encode(writer io.Writer, bundle *Bundle, opts Options) error {
	payload, err := marshal(bundle, opts.Format)
	if err != nil {
		return err
	}

	if !opts.Compress {
		_, err = writer.Write(payload)
		if err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}

		return nil
	}

	compressor := lz4.NewWriter(writer)

	_, err = compressor.Write(payload)
	if err != nil {
		return fmt.Errorf("compress bundle: %w", err)
	}

	err = compressor.Close()
	if err != nil {
		return fmt.Errorf("compress bundle: %w", err)
	}

	return nil
}

// Decode reads a bundle written by Encode. Compression and format are
// detected from the content.
func Decode(reader io.Reader) (*Bundle, error) {
	buffered := bufio.NewReader(reader)

	head, err := buffered.Peek(len(lz4Magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var source io.Reader = buffered
	if bytes.Equal(head, lz4Magic) {
		source = lz4.NewReader(buffered)
	}

	payload, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	bundle, err := unmarshal(payload, mdast.DetectFormat(payload))
	if err != nil {
		return nil, err
	}

	err = bundle.Validate()
	if err != nil {
		return nil, err
	}

	return bundle, nil
}

func marshal(bundle *Bundle, format mdast.Format) ([]byte, error) {
	switch format {
	case mdast.FormatJSON, "":
		data, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json bundle: %w", err)
		}

		return append(data, '\n'), nil
	case mdast.FormatYAML:
		data, err := yaml.Marshal(bundle)
		if err != nil {
			return nil, fmt.Errorf("encode yaml bundle: %w", err)
		}

		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", mdast.ErrUnknownFormat, format)
	}
}

func unmarshal(payload []byte, format mdast.Format) (*Bundle, error) {
	var bundle Bundle

	switch format {
	case mdast.FormatJSON:
		err := json.Unmarshal(payload, &bundle)
		if err != nil {
			return nil, fmt.Errorf("decode json bundle: %w", err)
		}
	case mdast.FormatYAML:
		err := yaml.Unmarshal(payload, &bundle)
		if err != nil {
			return nil, fmt.Errorf("decode yaml bundle: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", mdast.ErrUnknownFormat, format)
	}

	for _, originals := range bundle.Components {
		for _, original := range originals {
			if original != nil {
				original.Normalize()
			}
		}
	}

	return &bundle, nil
}

// Size returns the encoded size of the payload of each component in bytes.
func (bundle *Bundle) Size() (map[int]int, error) {
	sizes := make(map[int]int, len(bundle.Components))

	for index, originals := range bundle.Components {
		data, err := json.Marshal(originals)
		if err != nil {
			return nil, fmt.Errorf("measure component %d: %w", index, err)
		}

		sizes[index] = len(data)
	}

	return sizes, nil
}
