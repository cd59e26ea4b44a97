// Package github stores the usage ledger as a CSV file in a GitHub
// repository, using the blob SHA as the version token.
package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/promocanvas/pkg/integrations"
	gh "github.com/matzehuels/promocanvas/pkg/integrations/github"
	"github.com/matzehuels/promocanvas/pkg/ledger"
)

// DefaultPath is the ledger file path inside the repository.
const DefaultPath = "ledger.csv"

// Store implements ledger.Store over the GitHub contents API.
type Store struct {
	client *gh.ContentClient
	repo   gh.Repository
	path   string
}

// New creates a store for path in repo. An empty path uses [DefaultPath].
func New(client *gh.ContentClient, repo gh.Repository, path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{client: client, repo: repo, path: path}
}

// Read implements ledger.Store.
func (s *Store) Read(ctx context.Context) (*ledger.Snapshot, error) {
	file, err := s.client.GetFile(ctx, s.repo, s.path)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", s.repo, s.path, err)
	}
	records, err := ledger.UnmarshalCSV(file.Content)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", s.repo, s.path, err)
	}
	return &ledger.Snapshot{Records: records, Version: file.SHA}, nil
}

// Create implements ledger.Store.
func (s *Store) Create(ctx context.Context, records []ledger.Record) (string, error) {
	return s.put(ctx, records, "", "Create usage ledger")
}

// Update implements ledger.Store.
func (s *Store) Update(ctx context.Context, records []ledger.Record, version string) (string, error) {
	if version == "" {
		return "", fmt.Errorf("%w: empty version", ledger.ErrConflict)
	}
	msg := "Update usage ledger"
	if n := len(records); n > 0 {
		msg = fmt.Sprintf("Record composition %d", records[n-1].ID)
	}
	return s.put(ctx, records, version, msg)
}

func (s *Store) put(ctx context.Context, records []ledger.Record, sha, msg string) (string, error) {
	data, err := ledger.MarshalCSV(records)
	if err != nil {
		return "", err
	}
	newSHA, err := s.client.PutFile(ctx, s.repo, s.path, data, sha, msg)
	switch {
	case errors.Is(err, gh.ErrConflict):
		return "", fmt.Errorf("%w: %v", ledger.ErrConflict, err)
	case errors.Is(err, integrations.ErrNotFound) && sha != "":
		// The file vanished after it was read.
		return "", fmt.Errorf("%w: %v", ledger.ErrConflict, err)
	case err != nil:
		return "", fmt.Errorf("write %s/%s: %w", s.repo, s.path, err)
	}
	return newSHA, nil
}
