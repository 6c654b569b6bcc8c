package fs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-progress writes; the watcher ignores these files.
const TempFilePrefix = "cleverpad-tmp-"

// WriteAtomic streams the output of write into a temp file next to filename
// and renames it into place only when write and the sync both succeed. A
// failed export or state write leaves the previous file untouched.
func WriteAtomic(filename string, perm os.FileMode, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(name)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err = os.Chmod(name, perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err = os.Rename(name, filename); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}

// WriteFileAtomic is WriteAtomic for data already in memory.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return WriteAtomic(filename, perm, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}
