package ledger

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
)

// MemoryStore keeps a ledger in process memory. Its version is a counter.
type MemoryStore struct {
	mu      sync.Mutex
	exists  bool
	records []Record
	version int
}

// NewMemoryStore returns an empty store with no ledger.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return nil, ErrNotFound
	}
	return &Snapshot{Records: cloneRecords(s.records), Version: strconv.Itoa(s.version)}, nil
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, records []Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists {
		return "", fmt.Errorf("%w: ledger already exists", ErrConflict)
	}
	s.exists = true
	s.records = cloneRecords(records)
	s.version = 1
	return strconv.Itoa(s.version), nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, records []Record, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists || version != strconv.Itoa(s.version) {
		return "", fmt.Errorf("%w: have version %d, got %q", ErrConflict, s.version, version)
	}
	s.records = cloneRecords(records)
	s.version++
	return strconv.Itoa(s.version), nil
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Identifiers = slices.Clone(r.Identifiers)
		out[i] = r
	}
	return out
}
