package files

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath is returned for locations that would escape the root.
	ErrInvalidPath = errors.New("invalid media path")
	// ErrNotFound is returned when the file does not exist.
	ErrNotFound = errors.New("media not found")
)

// LocalStore serves media files below a root directory.
type LocalStore struct {
	root string
}

// NewLocalStore returns a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// Location decodes a raw request path segment into a stored location.
func Location(raw string) (string, error) {
	loc, err := url.PathUnescape(raw)
	if err != nil {
		return "", ErrInvalidPath
	}
	loc = strings.TrimPrefix(loc, "/")
	if loc == "" || !filepath.IsLocal(filepath.FromSlash(loc)) {
		return "", ErrInvalidPath
	}
	return loc, nil
}

// Path returns the on-disk path of location after checking it exists and is
// a regular file.
func (s *LocalStore) Path(location string) (string, error) {
	rel := filepath.FromSlash(location)
	if !filepath.IsLocal(rel) {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.root, rel)
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return full, nil
}
