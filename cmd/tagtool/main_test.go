package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"--data-dir", t.TempDir()}, args...), &out)
	return out.String(), err
}

func TestFormatsCommand(t *testing.T) {
	out, err := runTool(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "formats:     cbor json msgpack protobuf tag toml yaml\n")
	assert.Contains(t, out, "strategies:  color identity reverse-boolean\n")
}

func TestConvertAndDump(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "person.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"name": "José", /* years */ "age": 16}`), 0o644))

	yml := filepath.Join(dir, "out", "person.yml")
	_, err := runTool(t, "convert", in, yml)
	require.NoError(t, err)
	data, err := os.ReadFile(yml)
	require.NoError(t, err)
	assert.Equal(t, "name: José\nage: 16\n", string(data))

	dat := filepath.Join(dir, "person.dat")
	_, err = runTool(t, "convert", "--compression", "zstd", yml, dat)
	require.NoError(t, err)

	out, err := runTool(t, "dump", "-c", "zstd", dat)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"José\",\n  \"age\": 16\n}\n", out)

	out, err = runTool(t, "dump", "-c", "zstd", "-o", "yaml", dat)
	require.NoError(t, err)
	assert.Equal(t, "name: José\nage: 16\n", out)

	// Reading with the wrong codec fails.
	_, err = runTool(t, "dump", "-c", "gzip", dat)
	assert.Error(t, err)
}

func TestConvertToStdout(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "person.toml")
	require.NoError(t, os.WriteFile(in, []byte("name = \"Ana\"\nage = 30\n"), 0o644))

	out, err := runTool(t, "convert", "--to", "json", "--pretty=false", in, "-")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ana","age":30}`, out)

	_, err = runTool(t, "convert", "--to", "protobuf", in, "-")
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	dataDir := t.TempDir()
	files := filepath.Join(dataDir, "files", "arenas")
	require.NoError(t, os.MkdirAll(files, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(files, "a.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(files, "b.json"), []byte("[1]"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"--data-dir", dataDir, "stats"}, &out))
	assert.Contains(t, out.String(), "backend: disk\n")
	assert.Contains(t, out.String(), "files:   2\n")
	assert.Contains(t, out.String(), "bytes:   5\n")
}

func TestUsageErrors(t *testing.T) {
	_, err := runTool(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runTool(t, "explode")
	assert.ErrorIs(t, err, errUsage)

	_, err = runTool(t, "dump")
	assert.Error(t, err)

	_, err = runTool(t, "dump", filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)

	_, err = runTool(t, "convert", "--from", "xml", "a.xml", "b.json")
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, "yaml", formatFor("", "config.YML"))
	assert.Equal(t, "tag", formatFor("", "level.dat"))
	assert.Equal(t, "cbor", formatFor("cbor", "level.dat"))
	assert.Equal(t, "json", formatFor("", "noext"))
}
