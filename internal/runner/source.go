package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

var (
	// ErrEmptyPath is returned for a blank path argument.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL is returned for paths holding a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
	// ErrDirectoryPath is returned when a single source file was expected.
	ErrDirectoryPath = errors.New("path points to a directory")
)

// ReadSource reads one source file under the same limits the runner applies
// to every file: files above maxSize (when positive) are rejected with
// ErrFileTooLarge and binary content with ErrBinaryFile. It returns the
// content and the cleaned absolute path.
func ReadSource(path string, maxSize int64) ([]byte, string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return nil, "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("resolve %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return nil, "", fmt.Errorf("%w: %s", ErrDirectoryPath, path)
	}

	if maxSize > 0 && info.Size() > maxSize {
		return nil, "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, info.Size(), maxSize)
	}

	content, err := os.ReadFile(absPath) //nolint:gosec // the user names their own files
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	if enry.IsBinary(content) {
		return nil, "", fmt.Errorf("%w: %s", ErrBinaryFile, path)
	}

	return content, absPath, nil
}
