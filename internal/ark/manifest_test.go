package ark_test

import (
	"encoding/json"
	"errors"
	"testing"

	"ark-go/internal/ark"
)

func strptr(s string) *string { return &s }

func TestEngine_Configure(t *testing.T) {
	t.Run("patch updates only the named fields", func(t *testing.T) {
		e := newTestEngine(t)

		if err := e.Configure(ark.ManifestPatch{Title: strptr("Photos"), Description: strptr("Holiday shots")}); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}
		if err := e.Configure(ark.ManifestPatch{Title: strptr("Photos 2026")}); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}

		info := e.Info()
		if info.Title != "Photos 2026" {
			t.Errorf("Title = %q, want %q", info.Title, "Photos 2026")
		}
		if info.Description != "Holiday shots" {
			t.Errorf("Description = %q, want %q", info.Description, "Holiday shots")
		}
	})

	t.Run("each configure is one log entry", func(t *testing.T) {
		e := newTestEngine(t)
		before := e.Version()
		if err := e.Configure(ark.ManifestPatch{Title: strptr("t")}); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}
		if e.Version() != before+1 {
			t.Errorf("Version() = %d, want %d", e.Version(), before+1)
		}
	})

	t.Run("empty patch still requires ownership", func(t *testing.T) {
		owner, log, blocks := newPersistedEngine(t)
		reader, err := ark.Open(ark.Options{Key: owner.Key(), Blocks: blocks, Log: log})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := reader.Configure(ark.ManifestPatch{}); !errors.Is(err, ark.ErrPermissionDenied) {
			t.Fatalf("Configure() error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("manifest is a readable json file", func(t *testing.T) {
		e := newTestEngine(t)
		if err := e.Configure(ark.ManifestPatch{Title: strptr("Docs")}); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}

		data, err := e.ReadFile(ark.ManifestPath)
		if err != nil {
			t.Fatalf("ReadFile(manifest) error = %v", err)
		}
		var m ark.Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if m.Title != "Docs" {
			t.Errorf("manifest title = %q, want %q", m.Title, "Docs")
		}
		if m.URL != e.URL() {
			t.Errorf("manifest url = %q, want %q", m.URL, e.URL())
		}
	})
}

func TestEngine_Info(t *testing.T) {
	e := newTestEngine(t)
	mustWrite(t, e, "/f", "x")

	info := e.Info()
	if info.Key != e.Key() {
		t.Errorf("Key = %q, want %q", info.Key, e.Key())
	}
	if info.URL != e.URL() {
		t.Errorf("URL = %q, want %q", info.URL, e.URL())
	}
	if info.Version != e.Version() {
		t.Errorf("Version = %d, want %d", info.Version, e.Version())
	}
	if !info.IsOwner {
		t.Error("IsOwner = false, want true")
	}
	if info.Peers != 0 {
		t.Errorf("Peers = %d, want 0", info.Peers)
	}
	if info.Mtime.IsZero() {
		t.Error("Mtime is zero, want last entry time")
	}

	// A corrupted manifest degrades to empty fields, not an error.
	mustWrite(t, e, ark.ManifestPath, "{not json")
	info = e.Info()
	if info.Title != "" || info.Description != "" {
		t.Errorf("corrupt manifest yielded Title=%q Description=%q", info.Title, info.Description)
	}
	if info.URL != e.URL() {
		t.Errorf("corrupt manifest dropped URL, got %q", info.URL)
	}
}
