package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/promocanvas/pkg/cache"
)

// FileStore keeps a CSV ledger in a local file. The version is the SHA-256
// of the file contents, so edits by other processes are detected on write.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store for path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the ledger file path.
func (s *FileStore) Path() string { return s.path }

// Read implements Store.
func (s *FileStore) Read(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	records, err := UnmarshalCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return &Snapshot{Records: records, Version: cache.Hash(data)}, nil
}

// Create implements Store.
func (s *FileStore) Create(ctx context.Context, records []Record) (string, error) {
	data, err := MarshalCSV(records)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%w: %s already exists", ErrConflict, s.path)
	}
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Update implements Store.
func (s *FileStore) Update(ctx context.Context, records []Record, version string) (string, error) {
	data, err := MarshalCSV(records)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s was removed", ErrConflict, s.path)
	}
	if err != nil {
		return "", err
	}
	if cache.Hash(current) != version {
		return "", fmt.Errorf("%w: %s", ErrConflict, s.path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return cache.Hash(data), nil
}
