package ark_test

import (
	"errors"
	"testing"

	"ark-go/internal/ark"
	"ark-go/internal/blockstore"
	"ark-go/internal/testutil"
)

// memLog is a minimal in-memory ark.Store for tests.
type memLog struct {
	entries []ark.Entry
	failPut bool
}

func (l *memLog) AppendEntry(e ark.Entry) error {
	if l.failPut {
		return errors.New("store down")
	}
	l.entries = append(l.entries, e)
	return nil
}

func (l *memLog) LoadEntries() ([]ark.Entry, error) {
	out := make([]ark.Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

// newTestEngine creates an owned archive over in-memory stores.
// A fresh archive is at version 1: creation writes the initial manifest.
func newTestEngine(t *testing.T) *ark.Engine {
	t.Helper()
	e, err := ark.Create(ark.Options{
		Blocks: blockstore.NewMemoryBlockStore("test"),
		Clock:  testutil.FixedClock(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return e
}

// newPersistedEngine creates an owned archive whose log writes through to a
// memLog, so the archive can be reopened.
func newPersistedEngine(t *testing.T) (*ark.Engine, *memLog, ark.BlockStore) {
	t.Helper()
	log := &memLog{}
	blocks := blockstore.NewMemoryBlockStore("test")
	e, err := ark.Create(ark.Options{
		Blocks: blocks,
		Log:    log,
		Clock:  testutil.FixedClock(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return e, log, blocks
}

func mustWrite(t *testing.T, e *ark.Engine, path, content string) {
	t.Helper()
	if err := e.WriteFile(path, []byte(content)); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func mustMkdir(t *testing.T, e *ark.Engine, path string) {
	t.Helper()
	if err := e.Mkdir(path); err != nil {
		t.Fatalf("Mkdir(%q) error = %v", path, err)
	}
}

func mustRead(t *testing.T, e *ark.Engine, path string) string {
	t.Helper()
	data, err := e.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", path, err)
	}
	return string(data)
}
