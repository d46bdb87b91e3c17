package blockstore

import (
	"context"
	"fmt"

	"ark-go/internal/ark"
	"ark-go/internal/config"
)

// NewBlockStoreFromConfig creates a BlockStore implementation based on the
// blockstore config type.
func NewBlockStoreFromConfig(cfg config.BlockStoreConfig) (ark.BlockStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryBlockStore(cfg.Name), nil
	case "s3":
		return NewS3BlockStore(context.Background(), cfg)
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem block store requires fs_root to be set")
		}
		return NewFileSystemBlockStore(cfg.Name, cfg.FSRoot)
	default:
		return nil, fmt.Errorf("unknown block store type: %s", cfg.Type)
	}
}
