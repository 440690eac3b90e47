package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const stateSchemaVersion = "1.0"

// StateStore tracks which videos have already been processed, scoped per
// niche. The only state that outlives a process run: a single JSON file,
// loaded once at startup and flushed durably on every mark.
type StateStore struct {
	path string
	data *stateData
}

type stateData struct {
	Version   string                          `json:"version"`
	UpdatedAt time.Time                       `json:"updated_at"`
	Processed map[string]map[string]time.Time `json:"processed"` // niche -> video id -> processed at
}

// NewStateStore opens the store at path. A missing file yields an empty
// store; a corrupt file is reinitialized to empty (at the cost of potential
// reprocessing) so a bad state file never blocks a run.
func NewStateStore(path string) (*StateStore, error) {
	s := &StateStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = newStateData()
			// Save immediately to catch permission errors early
			return s, s.save()
		}
		return nil, fmt.Errorf("reading state file %s: %w", path, err)
	}

	s.data = &stateData{}
	if err := json.Unmarshal(data, s.data); err != nil {
		log.Printf("Warning: %v (%s), reinitializing empty: %v", ErrStateCorrupt, path, err)
		s.data = newStateData()
		return s, s.save()
	}
	if s.data.Processed == nil {
		s.data.Processed = make(map[string]map[string]time.Time)
	}

	return s, nil
}

func newStateData() *stateData {
	return &stateData{
		Version:   stateSchemaVersion,
		Processed: make(map[string]map[string]time.Time),
	}
}

// HasProcessed reports whether the (niche, video) pair is already recorded.
func (s *StateStore) HasProcessed(niche, videoID string) bool {
	videos, ok := s.data.Processed[niche]
	if !ok {
		return false
	}
	_, ok = videos[videoID]
	return ok
}

// MarkProcessed records the (niche, video) pair and flushes it to disk before
// returning, so a crash cannot lose more than the in-flight item. Marking an
// already-recorded pair is a no-op.
func (s *StateStore) MarkProcessed(niche, videoID string) error {
	if s.HasProcessed(niche, videoID) {
		return nil
	}

	videos, ok := s.data.Processed[niche]
	if !ok {
		videos = make(map[string]time.Time)
		s.data.Processed[niche] = videos
	}
	videos[videoID] = time.Now()

	return s.save()
}

// ProcessedCount returns the number of recorded videos for a niche.
func (s *StateStore) ProcessedCount(niche string) int {
	return len(s.data.Processed[niche])
}

// save persists the data to disk atomically: temp file in the same
// directory, fsync, then rename over the target.
func (s *StateStore) save() error {
	s.data.UpdatedAt = time.Now()

	encoded, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	return atomicWriteFile(s.path, encoded)
}

// atomicWriteFile writes data to path so the target is never left in a
// partially-written state.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tubescribe-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name()) // Best effort cleanup
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
