package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStateStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := NewStateStore(path)
	if err != nil {
		t.Fatalf("NewStateStore() error = %v", err)
	}
	if store.HasProcessed("tech", "vid1") {
		t.Error("empty store should report nothing processed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store file should be created on open: %v", err)
	}
}

func TestStateStoreMarkAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewStateStore(path)
	if err != nil {
		t.Fatalf("NewStateStore() error = %v", err)
	}

	if err := store.MarkProcessed("tech", "vid1"); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}

	if !store.HasProcessed("tech", "vid1") {
		t.Error("marked video should be reported processed")
	}
	if store.HasProcessed("cooking", "vid1") {
		t.Error("records are scoped per niche")
	}
	if store.HasProcessed("tech", "vid2") {
		t.Error("unmarked video should not be reported processed")
	}
	if store.ProcessedCount("tech") != 1 {
		t.Errorf("ProcessedCount(tech) = %d, want 1", store.ProcessedCount("tech"))
	}
}

func TestStateStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := NewStateStore(path)
	if err != nil {
		t.Fatalf("NewStateStore() error = %v", err)
	}
	if err := store.MarkProcessed("tech", "vid1"); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}

	reopened, err := NewStateStore(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	if !reopened.HasProcessed("tech", "vid1") {
		t.Error("record lost across reopen")
	}
}

func TestStateStoreMarkIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewStateStore(path)
	if err != nil {
		t.Fatalf("NewStateStore() error = %v", err)
	}

	if err := store.MarkProcessed("tech", "vid1"); err != nil {
		t.Fatalf("first MarkProcessed() error = %v", err)
	}
	if err := store.MarkProcessed("tech", "vid1"); err != nil {
		t.Fatalf("second MarkProcessed() error = %v", err)
	}
	if store.ProcessedCount("tech") != 1 {
		t.Errorf("ProcessedCount(tech) = %d, want 1", store.ProcessedCount("tech"))
	}
}

func TestStateStoreCorruptFileRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := NewStateStore(path)
	if err != nil {
		t.Fatalf("NewStateStore() should recover from corruption, got %v", err)
	}
	if store.HasProcessed("tech", "vid1") {
		t.Error("recovered store should be empty")
	}

	// The recovered store is usable and durable.
	if err := store.MarkProcessed("tech", "vid1"); err != nil {
		t.Fatalf("MarkProcessed() after recovery: %v", err)
	}
	reopened, err := NewStateStore(path)
	if err != nil {
		t.Fatalf("reopening recovered store: %v", err)
	}
	if !reopened.HasProcessed("tech", "vid1") {
		t.Error("record written after recovery was lost")
	}
}
