package blockstore

import (
	"fmt"
	"sync"

	"ark-go/internal/ark"
)

// MemoryBlockStore is an in-memory implementation of the BlockStore
// interface, useful for testing and throwaway archives.
// This implementation is safe for concurrent use.
type MemoryBlockStore struct {
	name   string
	blocks map[string][]byte // ref -> block
	mu     sync.RWMutex
}

// NewMemoryBlockStore creates a new in-memory block store with the given name.
func NewMemoryBlockStore(name string) *MemoryBlockStore {
	return &MemoryBlockStore{
		name:   name,
		blocks: make(map[string][]byte),
	}
}

// Put stores a block under its ref.
func (m *MemoryBlockStore) Put(ref string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Idempotent: storing the same ref multiple times is safe
	buf := make([]byte, len(data))
	copy(buf, data)
	m.blocks[ref] = buf
	return nil
}

// Get retrieves a block by ref.
func (m *MemoryBlockStore) Get(ref string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blocks[ref]
	if !ok {
		return nil, fmt.Errorf("block not found: %s", ref)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Has reports whether a block is present.
func (m *MemoryBlockStore) Has(ref string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.blocks[ref]
	return ok, nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryBlockStore) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryBlockStore implements ark.BlockStore interface
var _ ark.BlockStore = (*MemoryBlockStore)(nil)
