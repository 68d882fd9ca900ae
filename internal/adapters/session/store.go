// Package session implements the persisted layout store: a content-addressed
// on-disk cache of previously written layout files.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/core/ports"
)

// Store implements ports.SessionStore on a directory tree. Each stashed
// layout lives at <root>/<path_hash>/<content_hash>/<basename>, so a file
// is a hit only when both its location and its exact bytes match a
// previous stash.
type Store struct {
	root string
	mu   sync.Mutex
}

// NewStore creates a store rooted at the given directory. The directory is
// created lazily on the first Stash.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Stash copies the layout file at path into the store and returns the
// location it was filed under. Stashing the same content twice is a no-op
// returning the existing location.
func (s *Store) Stash(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, location, err := s.locate(path)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(location); err == nil {
		return location, nil
	}

	if err := os.MkdirAll(filepath.Dir(location), domain.DirPerm); err != nil {
		return "", zerr.Wrap(err, "failed to create session store directory")
	}
	//nolint:gosec // location is derived from the cleaned store root
	if err := os.WriteFile(location, data, domain.FilePerm); err != nil {
		return "", zerr.Wrap(err, "failed to stash layout")
	}
	return location, nil
}

// Lookup reports whether the current content of the file at path is already
// stashed. A missing source file is a miss, not an error.
func (s *Store) Lookup(path string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, location, err := s.locate(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	if _, err := os.Stat(location); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, zerr.Wrap(err, "failed to probe session store")
	}
	return location, true, nil
}

// Clean removes every stashed layout.
func (s *Store) Clean() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.root); err != nil {
		return zerr.Wrap(err, "failed to clean session store")
	}
	return nil
}

// locate reads the file and computes its store location from the hash of
// its absolute path and the hash of its bytes.
func (s *Store) locate(path string) ([]byte, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to resolve layout path")
	}

	//nolint:gosec // path is provided by user
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}
		return nil, "", zerr.Wrap(err, "failed to read layout file")
	}

	pathHash := fmt.Sprintf("%016x", xxhash.Sum64String(abs))
	contentHash := fmt.Sprintf("%016x", xxhash.Sum64(data))
	location := filepath.Join(s.root, pathHash, contentHash, filepath.Base(abs))
	return data, location, nil
}

var _ ports.SessionStore = (*Store)(nil)
