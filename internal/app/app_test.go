package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ark-go/internal/ark"
	"ark-go/internal/config"
)

func newTestApp(t *testing.T) *ArkApp {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("test-host", base)
	cfg.BlockStore = config.BlockStoreConfig{Type: "memory", Name: "test"}
	cfg.LogStore = config.LogStoreConfig{Type: "memory"}

	a, err := NewArkApp(cfg)
	if err != nil {
		t.Fatalf("NewArkApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArkApp_CreateAndOpen(t *testing.T) {
	a := newTestApp(t)

	engine, err := a.CreateArchive("My Files", "test archive")
	if err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}

	info := engine.Info()
	if info.Title != "My Files" || info.Description != "test archive" {
		t.Errorf("manifest = %q / %q", info.Title, info.Description)
	}

	// Opening by URL or bare key yields the same archive.
	for _, ref := range []string{engine.URL(), engine.Key()} {
		reopened, err := a.OpenArchive(ref)
		if err != nil {
			t.Fatalf("OpenArchive(%q) error = %v", ref, err)
		}
		if reopened.Key() != engine.Key() {
			t.Errorf("OpenArchive(%q).Key() = %q", ref, reopened.Key())
		}
		if !reopened.IsOwner() {
			t.Errorf("OpenArchive(%q).IsOwner() = false", ref)
		}
	}
}

func TestArkApp_OpenUnknown(t *testing.T) {
	a := newTestApp(t)

	key, err := ark.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if _, err := a.OpenArchive("ark://" + key); !errors.Is(err, ark.ErrNotFound) {
		t.Fatalf("OpenArchive() error = %v, want ErrNotFound", err)
	}

	if _, err := a.OpenArchive("https://" + key); !errors.Is(err, ark.ErrInvalidScheme) {
		t.Fatalf("OpenArchive(bad scheme) error = %v, want ErrInvalidScheme", err)
	}
}

func TestArkApp_JoinArchive(t *testing.T) {
	a := newTestApp(t)

	key, err := ark.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	engine, err := a.JoinArchive("ark://" + key)
	if err != nil {
		t.Fatalf("JoinArchive() error = %v", err)
	}
	if engine.IsOwner() {
		t.Error("joined archive IsOwner() = true, want false")
	}
	if engine.Version() != 0 {
		t.Errorf("joined archive Version() = %d, want 0", engine.Version())
	}

	if err := engine.WriteFile("/f", []byte("x")); !errors.Is(err, ark.ErrPermissionDenied) {
		t.Errorf("WriteFile() error = %v, want ErrPermissionDenied", err)
	}
}

func TestArkApp_ListArchives(t *testing.T) {
	a := newTestApp(t)

	if _, err := a.CreateArchive("", ""); err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}
	if _, err := a.CreateArchive("", ""); err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}

	records, err := a.ListArchives()
	if err != nil {
		t.Fatalf("ListArchives() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("ListArchives() len = %d, want 2", len(records))
	}
}

func TestArkApp_ImportExport(t *testing.T) {
	a := newTestApp(t)
	engine, err := a.CreateArchive("", "")
	if err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}

	// Lay out a local tree to import.
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("alpha"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("beta"), 0644); err != nil {
		t.Fatal(err)
	}

	count, err := a.Import(engine, src, "/imported", true)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Import() count = %d, want 2", count)
	}

	data, err := engine.ReadFile("/imported/sub/b.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "beta" {
		t.Errorf("imported content = %q", data)
	}

	// Round trip back out to disk.
	out := t.TempDir()
	written, err := a.Export(engine, "/imported", out)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(written) != 2 {
		t.Errorf("Export() wrote %d files, want 2", len(written))
	}

	back, err := os.ReadFile(filepath.Join(out, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	if string(back) != "beta" {
		t.Errorf("exported content = %q", back)
	}
}

func TestArkApp_ImportSingleFile(t *testing.T) {
	a := newTestApp(t)
	engine, err := a.CreateArchive("", "")
	if err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}

	src := filepath.Join(t.TempDir(), "solo.txt")
	if err := os.WriteFile(src, []byte("solo"), 0644); err != nil {
		t.Fatal(err)
	}

	count, err := a.Import(engine, src, "/docs", false)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Import() count = %d, want 1", count)
	}

	data, err := engine.ReadFile("/docs/solo.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "solo" {
		t.Errorf("imported content = %q", data)
	}
}

func TestArkApp_UnlockWithoutEncryption(t *testing.T) {
	a := newTestApp(t)
	if a.Encrypted() {
		t.Error("Encrypted() = true for encryption type none")
	}
	if err := a.Unlock("whatever"); err != nil {
		t.Errorf("Unlock() error = %v, want nil no-op", err)
	}
}
