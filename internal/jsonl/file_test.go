package jsonl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEntries_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.jsonl")
	content := strings.Join([]string{
		`{"key":"a","value":"1"}`,
		``,
		`{not json`,
		`{"value":"orphan"}`,
		`["key","value"]`,
		`{"key":"","value":"\"empty key\""}`,
		`{"key":"b","value":"{invalid"}`,
		`{"key":"a","value":"2"}`,
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := readEntries(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a": "2",
		"":  `"empty key"`,
		"b": "{invalid",
	}, entries)
}

func TestReadEntries_MissingFile(t *testing.T) {
	_, err := readEntries(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestWriteEntries_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scope.jsonl")
	entries := map[string]string{
		"html":    `"<b>&</b>"`,
		"nested":  `{"a":[1,2,{"b":null}]}`,
		"unicode": `"焦虑"`,
	}
	keys := []string{"html", "nested", "unicode"}

	require.NoError(t, writeEntries(path, keys, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `{"key":"html","value":"\"<b>&</b>\""}`, lines[0])

	got, err := readEntries(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// No temp files left behind.
	matches, err := filepath.Glob(filepath.Join(dir, ".jsonl-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWriteEntries_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "scope.jsonl")
	err := writeEntries(path, []string{"k"}, map[string]string{"k": "1"})
	assert.Error(t, err)
}

func TestEnsureFile_KeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.jsonl")
	require.NoError(t, ensureFile(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	require.NoError(t, os.WriteFile(path, []byte(`{"key":"k","value":"1"}`+"\n"), 0o644))
	require.NoError(t, ensureFile(path))
	got, err := readEntries(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": "1"}, got)
}

func TestWriteEntries_InvalidUTF8IsLossless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.jsonl")
	entries := map[string]string{
		"k\xff":    "1",
		"plain":    `"ok"`,
		"badval":   "\"\xfe\"",
		"\xc3\x28": "",
	}
	keys := []string{"\xc3\x28", "badval", "k\xff", "plain"}

	require.NoError(t, writeEntries(path, keys, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"key":"plain","value":"\"ok\""}`)
	assert.Contains(t, string(data), `"enc":"base64"`)

	got, err := readEntries(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestReadEntries_SkipsBadEncodings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.jsonl")
	content := strings.Join([]string{
		`{"key":"a","value":"1"}`,
		`{"key":"!!","value":"MQ==","enc":"base64"}`,
		`{"key":"Yg==","value":"MQ==","enc":"rot13"}`,
		`{"key":"Yw==","value":"Mg==","enc":"base64"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := readEntries(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "2"}, got)
}

func TestReadEntries_LongLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.jsonl")
	long := `"` + strings.Repeat(`\"`, 1<<20) + `"`
	entries := map[string]string{"long": long, "short": "1"}

	require.NoError(t, writeEntries(path, []string{"long", "short"}, entries))

	got, err := readEntries(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
