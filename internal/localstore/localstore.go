// Package localstore persists small client-side snapshots (cart, wishlist)
// under fixed keys.
package localstore

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/pkg/errors"
)

// Persister stores opaque snapshots by key.
type Persister interface {
	Read(key string) (data []byte, ok bool, err error)
	Write(key string, data []byte) error
}

var keyRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create store dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !keyRe.MatchString(key) {
		return "", errors.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) Read(key string) ([]byte, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read %s", p)
	}
	return data, true, nil
}

// Write replaces the snapshot atomically via a temp file and rename.
func (s *FileStore) Write(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), p), "replace %s", p)
}

// MemStore is an in-process Persister.
type MemStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	Writes int
}

func NewMemStore() *MemStore { return &MemStore{data: map[string][]byte{}} }

func (s *MemStore) Read(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), d...), true, nil
}

func (s *MemStore) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	s.Writes++
	return nil
}
