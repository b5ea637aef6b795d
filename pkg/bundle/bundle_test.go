package bundle_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
)

func sourceTree() *mdast.Node {
	return mdast.Root(
		mdast.Parent(mdast.TypeParagraph,
			mdast.Text("Read the "),
			mdast.Parent(mdast.TypeLink, mdast.Text("guide")).WithProp("url", "https://example.com/guide"),
			mdast.Text(" before "),
			mdast.Parent(mdast.TypeStrong, mdast.Parent(mdast.TypeEmphasis, mdast.Text("launch"))),
			mdast.Literal(mdast.TypeHTML, "<br/>"),
			mdast.Parent(mdast.TypeDelete),
		),
	)
}

func escapeSource(t *testing.T) *bundle.Bundle {
	t.Helper()

	escaped, err := mdast.NewEscaper().Escape(sourceTree())
	require.NoError(t, err)

	return bundle.FromEscaped(escaped)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts bundle.Options
	}{
		{name: "json", opts: bundle.Options{Format: mdast.FormatJSON}},
		{name: "yaml", opts: bundle.Options{Format: mdast.FormatYAML}},
		{name: "json lz4", opts: bundle.Options{Format: mdast.FormatJSON, Compress: true}},
		{name: "yaml lz4", opts: bundle.Options{Format: mdast.FormatYAML, Compress: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			original := escapeSource(t)

			var buf bytes.Buffer

			require.NoError(t, bundle.Encode(&buf, original, tt.opts))

			decoded, err := bundle.Decode(&buf)
			require.NoError(t, err)

			assert.Equal(t, original, decoded)

			rebuilt, err := mdast.NewEscaper().Unescape(decoded.Escaped, decoded.Data())
			require.NoError(t, err)
			assert.Equal(t, sourceTree(), rebuilt)
		})
	}
}

func TestEncodeCompressedStartsWithFrameMagic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, bundle.Encode(&buf, escapeSource(t), bundle.Options{Compress: true}))

	assert.Equal(t, []byte{0x04, 0x22, 0x4d, 0x18}, buf.Bytes()[:4])
}

func TestFromEscaped(t *testing.T) {
	t.Parallel()

	got := escapeSource(t)

	assert.Equal(t, bundle.Version, got.Version)
	assert.Equal(t, "Read the <c0>guide</c0> before <c1>launch</c1><c2/><c3/>", got.Escaped)
	assert.Len(t, got.Components, 5)
	assert.Equal(t, []*mdast.Node{
		mdast.Parent(mdast.TypeStrong),
		mdast.Parent(mdast.TypeEmphasis),
	}, got.Components[1])
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty input", input: "", wantErr: bundle.ErrUnsupportedVersion},
		{name: "future version", input: `{"version": 9, "escaped": "", "components": {"-1": [{"type": "root"}]}}`, wantErr: bundle.ErrUnsupportedVersion},
		{name: "missing root", input: `{"version": 1, "escaped": "x", "components": {}}`, wantErr: bundle.ErrMissingRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := bundle.Decode(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := bundle.Decode(strings.NewReader("{not json"))
	require.Error(t, err)
}

func TestEncodeUnknownFormat(t *testing.T) {
	t.Parallel()

	err := bundle.Encode(&bytes.Buffer{}, escapeSource(t), bundle.Options{Format: "toml"})
	require.ErrorIs(t, err, mdast.ErrUnknownFormat)
}

func TestSize(t *testing.T) {
	t.Parallel()

	sizes, err := escapeSource(t).Size()
	require.NoError(t, err)

	assert.Len(t, sizes, 5)
	assert.Equal(t, len(`[{"type":"delete"}]`), sizes[3])
}
