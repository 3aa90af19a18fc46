// FILE: lixenwraith/confman/atomic.go
package confman

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileMode is applied to newly written files when no mode was requested.
const DefaultFileMode fs.FileMode = 0o644

// permBits masks a requested mode down to permission bits.
const permBits fs.FileMode = 0o777

// atomicWriteOptions controls one atomic write.
type atomicWriteOptions struct {
	// mode, when set, is applied to the temporary file before the rename and
	// again to the final file afterwards.
	mode    fs.FileMode
	hasMode bool
}

// atomicWriteFile writes data to path so that readers see either the old or the
// new content, never a partial file:
//  1. ensure the parent directory exists
//  2. write and sync a temporary file in the same directory
//  3. rename it onto path in one operation
//
// Failures leave path untouched and the temporary file removed.
func atomicWriteFile(path string, data []byte, opts atomicWriteOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Kind: ErrWriteFailure, Op: "dump", Path: path,
			Err: fmt.Errorf("failed to create directory '%s': %w", dir, err)}
	}

	// Temp file mode: requested mode, else the existing target's mode, else the default
	mode := DefaultFileMode
	if opts.hasMode {
		mode = opts.mode & permBits
	} else if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		mode = info.Mode().Perm()
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return &Error{Kind: ErrWriteFailure, Op: "dump", Path: path,
			Err: fmt.Errorf("failed to create temporary file in '%s': %w", dir, err)}
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	// Restrict before any content lands in the temp file
	if err := tempFile.Chmod(mode); err != nil {
		tempFile.Close()
		return &Error{Kind: ErrPermission, Op: "dump", Path: tempPath,
			Err: fmt.Errorf("failed to set permissions %#o: %w", mode, err)}
	}

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return &Error{Kind: ErrWriteFailure, Op: "dump", Path: tempPath,
			Err: fmt.Errorf("failed to write temporary file: %w", err)}
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return &Error{Kind: ErrWriteFailure, Op: "dump", Path: tempPath,
			Err: fmt.Errorf("failed to sync temporary file: %w", err)}
	}

	if err := tempFile.Close(); err != nil {
		return &Error{Kind: ErrWriteFailure, Op: "dump", Path: tempPath,
			Err: fmt.Errorf("failed to close temporary file: %w", err)}
	}

	if err := os.Rename(tempPath, path); err != nil {
		return &Error{Kind: ErrAtomicReplace, Op: "dump", Path: path,
			Err: fmt.Errorf("could not move temporary file '%s' into place: %w", tempPath, err)}
	}
	removed = true

	// Re-apply on the final file in case the filesystem adjusted it
	if opts.hasMode {
		if err := os.Chmod(path, mode); err != nil {
			return &Error{Kind: ErrPermission, Op: "dump", Path: path,
				Err: fmt.Errorf("failed to set permissions %#o: %w", mode, err)}
		}
	}

	return nil
}

// isNotExist reports whether err means the file is missing.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
