package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
)

// stdioPath selects stdin or stdout.
const stdioPath = "-"

// readInput reads a file, or stdin for "-". The label names the source in
// messages.
func readInput(path string, stdin io.Reader) (data []byte, label string, err error) {
	if path == stdioPath {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, "stdin", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read %s: %w", path, err)
	}

	return data, path, nil
}

// writeOutput writes to a file, or to stdout for "" and "-".
func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == stdioPath {
		_, err := stdout.Write(data)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		return nil
	}

	err := os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// resolveFormat picks the explicit format, else the file extension, else
// the content.
func resolveFormat(explicit, path string, data []byte) (mdast.Format, error) {
	if explicit != "" {
		return mdast.ParseFormat(explicit)
	}

	if format, ok := mdast.FormatFromPath(path); ok {
		return format, nil
	}

	return mdast.DetectFormat(data), nil
}

// readTree reads and decodes a markdown tree.
func readTree(path, explicitFormat string, stdin io.Reader) (*mdast.Node, error) {
	data, label, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	format, err := resolveFormat(explicitFormat, path, data)
	if err != nil {
		return nil, err
	}

	tree, err := mdast.Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	return tree, nil
}

// readTranslation returns the inline translation, or the content of file
// with one trailing line break removed.
func readTranslation(inline, file string, stdin io.Reader) (string, error) {
	if file == "" {
		return inline, nil
	}

	data, _, err := readInput(file, stdin)
	if err != nil {
		return "", err
	}

	text := string(data)
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	return text, nil
}

// asReader adapts bytes for decoders that stream.
func asReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
