// Package file implements the conversation store as a local JSON array
// file. Every save rewrites the file, trimmed to the most recent 50 turns
// to bound growth.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nihao-labs/yuban/internal/conversation"
)

// maxRetained is how many turns survive a save.
const maxRetained = 50

// Store is a file-backed conversation store.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store persisting to path. The file is created lazily on the
// first append.
func New(path string) *Store {
	return &Store{path: path}
}

// Append adds a turn and rewrites the file, keeping the newest 50 entries.
func (s *Store) Append(_ context.Context, turn conversation.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.load()
	if err != nil {
		return err
	}

	turns = append(turns, turn)
	if len(turns) > maxRetained {
		turns = turns[len(turns)-maxRetained:]
	}
	return s.save(turns)
}

// ListAll returns the retained turns in the order they were appended.
func (s *Store) ListAll(_ context.Context) ([]conversation.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Clear truncates the history to an empty array.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]conversation.Turn{})
}

// Close is a no-op — every operation opens and closes the file itself.
func (s *Store) Close() error { return nil }

func (s *Store) load() ([]conversation.Turn, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []conversation.Turn{}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var turns []conversation.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	return turns, nil
}

func (s *Store) save(turns []conversation.Turn) error {
	data, err := json.MarshalIndent(turns, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}
