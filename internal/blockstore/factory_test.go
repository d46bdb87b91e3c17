package blockstore

import (
	"testing"

	"ark-go/internal/config"
)

func TestNewBlockStoreFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := NewBlockStoreFromConfig(config.BlockStoreConfig{Type: "memory", Name: "m"})
		if err != nil {
			t.Fatalf("NewBlockStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*MemoryBlockStore); !ok {
			t.Errorf("store type = %T, want *MemoryBlockStore", store)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		store, err := NewBlockStoreFromConfig(config.BlockStoreConfig{
			Type:   "filesystem",
			Name:   "f",
			FSRoot: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewBlockStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*FileSystemBlockStore); !ok {
			t.Errorf("store type = %T, want *FileSystemBlockStore", store)
		}
	})

	t.Run("filesystem without root", func(t *testing.T) {
		if _, err := NewBlockStoreFromConfig(config.BlockStoreConfig{Type: "filesystem"}); err == nil {
			t.Fatal("expected error for missing fs_root")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewBlockStoreFromConfig(config.BlockStoreConfig{Type: "tape"}); err == nil {
			t.Fatal("expected error for unknown type")
		}
	})
}
