package tagscan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"
)

var (
	// ErrFileNotFound is returned by Load when the path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidUTF8 is returned by Load when the content is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// Load reads the whole file at path as UTF-8 text.
// Existence is checked before any read is attempted; a missing path yields
// an error wrapping ErrFileNotFound. Other I/O errors are returned as is.
func Load(path string) (string, error) {
	if err := Exists(path); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) //nolint:gosec // reading a user-supplied path is the point
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, ErrInvalidUTF8)
	}
	return string(data), nil
}

// Exists returns an error wrapping ErrFileNotFound when path does not exist.
// Any other stat failure is returned unchanged.
func Exists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return err
}
