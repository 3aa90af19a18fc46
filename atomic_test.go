// FILE: lixenwraith/confman/atomic_test.go
package confman

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tempSiblings lists leftover temporary files next to path.
func tempSiblings(t *testing.T, path string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), filepath.Base(path)+".*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestFileSourceDump(t *testing.T) {
	tree := mustMapping(t, map[string]any{
		"app": map[string]any{"debug": false, "log_level": "INFO"},
	})

	for _, name := range []string{"out.json", "out.toml", "out.ini", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "dir", name)
			src := NewFileSource(path)

			require.NoError(t, src.Dump(tree))
			assert.Empty(t, tempSiblings(t, path))

			back := loadMapping(t, src)
			assert.True(t, tree.Equal(back), "got %s", back)
		})
	}

	t.Run("ReplacesExistingContent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"old": true, "padding": "xxxxxxxxxxxxxxxxxxxxxxxx"}`), 0o644))

		require.NoError(t, NewFileSource(path).Dump(tree))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "old")
		assert.NotContains(t, string(content), "padding")
	})

	t.Run("SerializeFailureLeavesTarget", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.json")
		original := []byte(`{"keep": 1}`)
		require.NoError(t, os.WriteFile(path, original, 0o644))

		bad := NewMapping()
		bad.Set("ratio", Float(math.Inf(1)))

		err := NewFileSource(path).Dump(bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWriteFailure)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, original, content)
		assert.Empty(t, tempSiblings(t, path))
	})

	t.Run("RenameFailureLeavesTarget", func(t *testing.T) {
		// A non-empty directory cannot be replaced by a file
		path := filepath.Join(t.TempDir(), "app.yaml")
		require.NoError(t, os.Mkdir(path, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(path, "inner"), []byte("x"), 0o644))

		err := NewFileSource(path).Dump(tree)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAtomicReplace)
		assert.ErrorIs(t, err, ErrWriteFailure)
		assert.Contains(t, err.Error(), path)

		info, statErr := os.Stat(path)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
		assert.Empty(t, tempSiblings(t, path))
	})

	t.Run("NonScalarINI", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.ini")
		nested := mustMapping(t, map[string]any{"app": map[string]any{"prints": []any{"a", "b"}}})

		err := NewFileSource(path).Dump(nested)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNonScalarValue)

		var cerr *Error
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "app.prints", cerr.Key)
		assert.Equal(t, path, cerr.Path)
		assert.Equal(t, "dump", cerr.Op)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("UnsupportedExtension", func(t *testing.T) {
		err := NewFileSource(filepath.Join(t.TempDir(), "app.xml")).Dump(tree)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestAtomicWriteModes(t *testing.T) {
	t.Run("DefaultMode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.json")
		require.NoError(t, atomicWriteFile(path, []byte("{}\n"), atomicWriteOptions{}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultFileMode, info.Mode().Perm())
	})

	t.Run("KeepsExistingMode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "existing.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
		require.NoError(t, os.Chmod(path, 0o640))

		require.NoError(t, atomicWriteFile(path, []byte("{}\n"), atomicWriteOptions{}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("RequestedModeMasked", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "secret.yaml")
		src := NewFileSource(path, WithDumpMode(os.ModeSetuid|0o600))

		require.NoError(t, src.Dump(NewMapping()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		assert.Zero(t, info.Mode()&os.ModeSetuid)
	})
}
