// FILE: lixenwraith/confman/cmd/confman/root_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/confman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree with the given arguments and stdin.
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand("test", "abc123", "today")
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestShowCommand(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.toml", "[server]\nhost = \"localhost\"\nport = 8080\n")
	local := writeFile(t, dir, "local.yaml", "server:\n  port: 9090\n")

	t.Run("MergesInOrder", func(t *testing.T) {
		out, _, err := run(t, "", "show", "-f", base, "-f", local, "--set", "server.debug=true")
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"server\": {\n    \"debug\": true,\n    \"host\": \"localhost\",\n    \"port\": 9090\n  }\n}\n", out)
	})

	t.Run("Formats", func(t *testing.T) {
		out, _, err := run(t, "", "show", "-f", base, "--format", "INI")
		require.NoError(t, err)
		assert.Contains(t, out, "[server]")
		assert.Contains(t, out, "port")

		out, _, err = run(t, "", "show", "-f", base, "--format", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "server:\n")

		_, _, err = run(t, "", "show", "-f", base, "--format", "xml")
		assert.ErrorIs(t, err, confman.ErrCapabilityUnavailable)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("CONFMAN_CLI_SERVER__HOST", "db.internal")

		out, _, err := run(t, "", "show", "-f", base, "-e", "CONFMAN_CLI_")
		require.NoError(t, err)
		assert.Contains(t, out, `"host": "db.internal"`)
	})

	t.Run("OptionalFileMissing", func(t *testing.T) {
		out, _, err := run(t, "", "show", "-f", base, "--optional-file", filepath.Join(dir, "none.json"))
		require.NoError(t, err)
		assert.Contains(t, out, `"port": 8080`)
	})

	t.Run("Schema", func(t *testing.T) {
		schema := writeFile(t, dir, "schema.json",
			`{"type": "object", "properties": {"server": {"type": "object", "required": ["tls"]}}}`)

		_, _, err := run(t, "", "show", "-f", base, "--schema", schema)
		var verr *confman.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "server", verr.Field)

		out, _, err := run(t, "", "show", "-f", base, "--set", "server.tls=off", "--schema", schema)
		require.NoError(t, err)
		assert.Contains(t, out, `"tls": false`)
	})

	t.Run("VerboseLogsSources", func(t *testing.T) {
		_, stderr, err := run(t, "", "show", "-v", "-f", base)
		require.NoError(t, err)
		assert.Contains(t, stderr, "configuration source loaded")
	})

	t.Run("NoSources", func(t *testing.T) {
		_, _, err := run(t, "", "show")
		assert.ErrorIs(t, err, confman.ErrNoSources)
	})
}

func TestGetCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.json", `{"db": {"port": 5432, "hosts": ["a", "b"], "password": null}}`)

	tests := map[string]string{
		"db.port":     "5432\n",
		"db.password": "\n",
		"db.hosts":    "[\"a\", \"b\"]\n",
	}
	for key, want := range tests {
		out, _, err := run(t, "", "get", "-f", path, key)
		require.NoError(t, err, key)
		assert.Equal(t, want, out, key)
	}

	_, _, err := run(t, "", "get", "-f", path, "db.missing")
	assert.ErrorContains(t, err, "path not found: db.missing")
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "settings.ini", "[app]\ndebug = false\nlog_level = INFO\n")
	out := filepath.Join(dir, "out", "settings.yaml")

	_, stderr, err := run(t, "", "convert", in, out, "--mode", "0600")
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+out)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, ok, err := confman.NewFileSource(out).Load()
	require.NoError(t, err)
	require.True(t, ok)
	tree, _ := v.AsMapping()
	cfg := confman.NewConfig(tree)
	debug, err := cfg.GetBool("app.debug")
	require.NoError(t, err)
	assert.False(t, debug)

	_, _, err = run(t, "", "convert", in, out, "--mode", "rw")
	assert.ErrorContains(t, err, "invalid mode")

	_, _, err = run(t, "", "convert", filepath.Join(dir, "missing.ini"), out)
	assert.ErrorIs(t, err, confman.ErrSourceNotFound)
}

func TestRawCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("WriteThenRead", func(t *testing.T) {
		path := filepath.Join(dir, "token")
		_, _, err := run(t, "s3cret\n", "raw", "write", path, "--mode", "0600")
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		out, _, err := run(t, "", "raw", "read", path)
		require.NoError(t, err)
		assert.Equal(t, "s3cret\n", out)
	})

	t.Run("Charset", func(t *testing.T) {
		path := writeFile(t, dir, "legacy.txt", "caf\xe9")

		_, _, err := run(t, "", "raw", "read", path)
		assert.ErrorIs(t, err, confman.ErrMalformedContent)

		out, _, err := run(t, "", "raw", "read", path, "--charset", "ISO-8859-1")
		require.NoError(t, err)
		assert.Equal(t, "café", out)

		_, _, err = run(t, "", "raw", "read", path, "--charset", "no-such-charset")
		assert.Error(t, err)
	})

	t.Run("Binary", func(t *testing.T) {
		path := filepath.Join(dir, "blob.bin")
		_, _, err := run(t, "\x00\xff\x10", "raw", "write", path, "--binary")
		require.NoError(t, err)

		out, _, err := run(t, "", "raw", "read", "--binary", path)
		require.NoError(t, err)
		assert.Equal(t, "\x00\xff\x10", out)
	})

	t.Run("OptionalMissing", func(t *testing.T) {
		out, _, err := run(t, "", "raw", "read", "--optional", filepath.Join(dir, "none"))
		require.NoError(t, err)
		assert.Empty(t, out)

		_, _, err = run(t, "", "raw", "read", filepath.Join(dir, "none"))
		assert.ErrorIs(t, err, confman.ErrSourceNotFound)
	})
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test (commit: abc123, built: today)")
}
