package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/shared"
)

// Store owns the persisted State file. Reads may happen concurrently with a
// running job; all writes go through Mutate and are serialized.
type Store struct {
	mu     sync.RWMutex
	path   string
	state  *State
	logger *log.Logger
}

// NewStore creates a Store for the given file path without touching the disk.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		path:   path,
		state:  NewState(),
		logger: logger,
	}
}

// Load reads the state file. A missing or corrupt file yields an empty but
// valid state: callers that merely want best-effort data never see an error
// here, the condition is logged and the process continues.
func (s *Store) Load() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read state file, starting empty", "path", s.path, "err", err)
		}
		s.state = NewState()
		return s.state.Clone()
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Error("state file corrupt, starting empty", "path", s.path, "err", fmt.Errorf("%w: %v", shared.ErrCorruptState, err))
		s.state = NewState()
		return s.state.Clone()
	}

	loaded.init()
	loaded.ApplyReplay()
	s.state = &loaded
	return s.state.Clone()
}

// Save writes the current state atomically: the JSON is written to a
// temporary file in the same directory and renamed over the target, so a
// crash mid-write never leaves a half-written store.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	s.state.SavedAt = time.Now()

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Snapshot returns a deep copy of the current state for concurrent readers.
func (s *Store) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Mutate applies fn to the state under the write lock, rebuilds the derived
// fields from the outcome log, and saves atomically. The current track's
// write always completes before Mutate returns.
func (s *Store) Mutate(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.state)
	s.state.ApplyReplay()
	return s.saveLocked()
}

// Merge merges a partial state in and saves, following the MergeInto policy.
func (s *Store) Merge(partial *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	MergeInto(s.state, partial)
	s.state.ApplyReplay()
	return s.saveLocked()
}
