package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mdescape/cmd/mdescape/commands"
	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast/codec"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
)

const treeJSON = `{
  "type": "root",
  "children": [
    {
      "type": "paragraph",
      "children": [
        {"type": "text", "value": "Hello "},
        {"type": "strong", "children": [{"type": "text", "value": "world"}]},
        {"type": "break"}
      ]
    }
  ]
}`

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := commands.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func escapeToFile(t *testing.T, extra ...string) string {
	t.Helper()

	output := filepath.Join(t.TempDir(), "bundle.out")
	args := append([]string{"escape", writeFile(t, "tree.json", treeJSON), "-o", output}, extra...)

	result := run(t, "", args...)
	require.NoError(t, result.err, result.stderr)

	return output
}

func TestEscapeString(t *testing.T) {
	t.Parallel()

	result := run(t, treeJSON, "escape", "-", "--string")
	require.NoError(t, result.err)
	assert.Equal(t, "Hello <c0>world</c0><c1/>\n", result.stdout)
}

func TestEscapeBundleFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantMagic bool
	}{
		{name: "json", args: nil},
		{name: "yaml", args: []string{"--format", "yaml"}},
		{name: "compressed", args: []string{"--compress"}, wantMagic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := escapeToFile(t, tt.args...)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMagic, bytes.HasPrefix(data, []byte{0x04, 0x22, 0x4d, 0x18}))

			decoded, err := bundle.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, "Hello <c0>world</c0><c1/>", decoded.Escaped)
		})
	}
}

func TestEscapeRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	result := run(t, treeJSON, "escape", "-", "--format", "toml")
	require.ErrorIs(t, result.err, mdast.ErrUnknownFormat)
}

func TestUnescape(t *testing.T) {
	t.Parallel()

	path := escapeToFile(t)

	result := run(t, "", "unescape", path, "--translated", "Hallo <c1/><c0>Welt</c0>")
	require.NoError(t, result.err, result.stderr)

	tree, err := mdast.Unmarshal([]byte(result.stdout), mdast.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, mdast.Root(
		mdast.Parent(mdast.TypeParagraph,
			mdast.Text("Hallo "),
			mdast.Literal(mdast.TypeBreak, ""),
			mdast.Parent(mdast.TypeStrong, mdast.Text("Welt")),
		),
	), tree)
}

func TestUnescapeFromFileAsYAML(t *testing.T) {
	t.Parallel()

	path := escapeToFile(t, "--compress")
	translation := writeFile(t, "de.txt", "Hallo <c0>Welt</c0><c1/>\n")

	result := run(t, "", "unescape", path, "--translated-file", translation, "--format", "yaml")
	require.NoError(t, result.err, result.stderr)

	tree, err := mdast.Unmarshal([]byte(result.stdout), mdast.FormatYAML)
	require.NoError(t, err)

	paragraph := tree.Children[0]
	require.Len(t, paragraph.Children, 3)
	assert.Equal(t, mdast.Text("Hallo "), paragraph.Children[0])
	assert.Equal(t, mdast.Parent(mdast.TypeStrong, mdast.Text("Welt")), paragraph.Children[1])
}

func TestUnescapeFallbackAndStrict(t *testing.T) {
	t.Parallel()

	path := escapeToFile(t)

	fallback := run(t, "", "unescape", path, "--translated", "Hallo <c0>Welt")
	require.NoError(t, fallback.err)
	assert.Contains(t, fallback.stderr, "translation rejected, source tree kept")
	assert.Contains(t, fallback.stdout, `"value": "world"`)

	strict := run(t, "", "unescape", path, "--translated", "Hallo <c0>Welt", "--strict")
	require.ErrorIs(t, strict.err, codec.ErrUnbalancedTags)
}

func TestUnescapeReportsLayout(t *testing.T) {
	t.Parallel()

	path := escapeToFile(t)

	result := run(t, "", "unescape", path, "--translated", "Hallo <c0>Welt</c0> <c0>!</c0>")
	require.NoError(t, result.err)
	assert.Contains(t, result.stderr, "placeholders dropped by the translation: [1]")
	assert.Contains(t, result.stderr, "placeholders repeated by the translation: [0]")
}

func TestUnescapeRequiresTranslation(t *testing.T) {
	t.Parallel()

	result := run(t, "", "unescape", escapeToFile(t))
	require.Error(t, result.err)
	assert.Contains(t, result.err.Error(), "--translated")
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tree := writeFile(t, "tree.json", treeJSON)

	identical := run(t, "", "roundtrip", tree)
	require.NoError(t, identical.err)
	assert.Contains(t, identical.stdout, "escaped:    Hello <c0>world</c0><c1/>")
	assert.Contains(t, identical.stdout, "trees are identical")

	translated := run(t, "", "roundtrip", tree, "--translated", "Hallo <c0>Welt</c0><c1/>")
	require.NoError(t, translated.err)
	assert.Contains(t, translated.stdout, `- `)
	assert.Contains(t, translated.stdout, `"value": "Welt"`)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	fromTree := run(t, "", "inspect", writeFile(t, "tree.json", treeJSON), "--tree")
	require.NoError(t, fromTree.err, fromTree.stderr)
	assert.Contains(t, fromTree.stdout, "escaped: Hello <c0>world</c0><c1/>")
	assert.Contains(t, fromTree.stdout, "<c1/>")
	assert.Contains(t, fromTree.stdout, "root > paragraph")
	assert.Contains(t, fromTree.stdout, "2 components")
	assert.Contains(t, fromTree.stdout, "component 0 [strong]")

	fromBundle := run(t, "", "inspect", escapeToFile(t, "--compress"))
	require.NoError(t, fromBundle.err, fromBundle.stderr)
	assert.Contains(t, fromBundle.stdout, "escaped: Hello <c0>world</c0><c1/>")

	garbage := run(t, "", "inspect", writeFile(t, "junk.txt", "{"))
	require.Error(t, garbage.err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := run(t, "", "validate", writeFile(t, "tree.json", treeJSON))
	require.NoError(t, valid.err)
	assert.Contains(t, valid.stdout, "tree is valid")

	invalid := run(t, `{"type": "root", "children": [{"value": "x"}]}`, "validate", "-")
	require.ErrorIs(t, invalid.err, commands.ErrInvalidTree)
	assert.Contains(t, invalid.stdout, "tree validation failed (stdin)")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	result := run(t, "", "version")
	require.NoError(t, result.err)
	assert.True(t, strings.HasPrefix(result.stdout, "mdescape "))
}

func TestMissingInputFile(t *testing.T) {
	t.Parallel()

	result := run(t, "", "escape", filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, result.err, os.ErrNotExist)
}
