package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates and overwrites", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "user.json")

		require.NoError(t, WriteFileAtomic(filename, []byte(`{"name":"a"}`), 0o600))
		require.NoError(t, WriteFileAtomic(filename, []byte(`{"name":"b"}`), 0o600))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"b"}`, string(got))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteFileAtomic(filepath.Join(dir, "theme.json"), []byte(`"dark"`), 0o600))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover %s", e.Name())
		}
	})

	t.Run("fails if directory missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "user.json")
		assert.Error(t, WriteFileAtomic(filename, []byte("x"), 0o600))
	})
}

func TestWriteAtomicKeepsPreviousFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "export.zip")
	require.NoError(t, WriteFileAtomic(filename, []byte("previous"), 0o644))

	err := WriteAtomic(filename, 0o644, func(w io.Writer) error {
		if _, err := io.WriteString(w, "half written"); err != nil {
			return err
		}
		return errors.New("export failed")
	})
	assert.EqualError(t, err, "export failed")

	got, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed")
}
