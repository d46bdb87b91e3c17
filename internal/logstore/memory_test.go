package logstore

import (
	"testing"

	"ark-go/internal/ark"
)

func TestMemoryRegistry_Archives(t *testing.T) {
	r := NewMemoryRegistry()

	if err := r.CreateArchive("key-a", true); err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}
	if err := r.CreateArchive("key-a", false); err == nil {
		t.Fatal("CreateArchive() expected error for duplicate key")
	}

	rec, err := r.GetArchive("key-a")
	if err != nil {
		t.Fatalf("GetArchive() error = %v", err)
	}
	if rec == nil || !rec.IsOwner {
		t.Errorf("GetArchive() = %+v", rec)
	}

	missing, err := r.GetArchive("key-b")
	if err != nil {
		t.Fatalf("GetArchive() error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetArchive(unknown) = %+v, want nil", missing)
	}
}

func TestMemoryRegistry_ForArchive(t *testing.T) {
	r := NewMemoryRegistry()

	store := r.ForArchive("key-a")
	if err := store.AppendEntry(ark.Entry{Version: 1, Path: "/f", Kind: ark.KindPut, Type: ark.TypeFile}); err != nil {
		t.Fatalf("AppendEntry() error = %v", err)
	}

	// The same key always yields the same log.
	again := r.ForArchive("key-a")
	entries, err := again.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("LoadEntries() len = %d, want 1", len(entries))
	}

	// A different key yields an independent log.
	other := r.ForArchive("key-b")
	entries, err = other.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("LoadEntries() len = %d, want 0", len(entries))
	}
}
