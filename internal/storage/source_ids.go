package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// SourceIDStore persists discovered NewsAPI source ids so outlet discovery
// survives restarts. The whole map lives in one small JSON file.
type SourceIDStore struct {
	mu   sync.Mutex
	path string
	ids  map[string]string
}

// NewSourceIDStore loads the map from path; a missing file starts empty.
func NewSourceIDStore(path string) (*SourceIDStore, error) {
	s := &SourceIDStore{path: path, ids: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading source id map: %w", err)
	}
	if err := json.Unmarshal(data, &s.ids); err != nil {
		return nil, fmt.Errorf("parsing source id map: %w", err)
	}
	return s, nil
}

// Get returns the stored id for an outlet name.
func (s *SourceIDStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ids[normalize(name)]
	return id, ok
}

// Put stores an id and rewrites the file.
func (s *SourceIDStore) Put(name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[normalize(name)] = id

	data, err := json.MarshalIndent(s.ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding source id map: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing source id map: %w", err)
	}
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
