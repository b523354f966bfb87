// Package store persists the last computed match response as a single
// flat-file JSON record. Whole-document semantics only: the record is read
// and overwritten wholesale, last write wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ium-app/ium-server/internal/listing"
)

// ErrNotFound reports that no match response has been stored yet.
var ErrNotFound = errors.New("no stored matches")

// Record is the stored envelope around a match response.
type Record struct {
	ID       string                 `json:"id"`
	SavedAt  time.Time              `json:"savedAt"`
	Response *listing.MatchResponse `json:"response"`
}

// FileStore holds exactly one record in a JSON file. No locking; concurrent
// writers race with last-write-wins semantics.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save overwrites the stored record with the provided response and returns
// the new envelope.
func (s *FileStore) Save(res *listing.MatchResponse) (*Record, error) {
	if res == nil {
		return nil, errors.New("match response is required")
	}

	rec := &Record{
		ID:       uuid.NewString(),
		SavedAt:  time.Now().UTC(),
		Response: res,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal match record: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write match record: %w", err)
	}

	return rec, nil
}

// Load reads the stored record. A missing file reports ErrNotFound.
func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read match record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse match record: %w", err)
	}
	if rec.Response == nil {
		return nil, ErrNotFound
	}

	return &rec, nil
}
