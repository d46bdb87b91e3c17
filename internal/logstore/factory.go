package logstore

import (
	"fmt"
	"os"
	"path/filepath"

	"ark-go/internal/config"
)

// NewRegistryFromConfig creates a Registry based on the provided configuration.
func NewRegistryFromConfig(cfg config.LogStoreConfig) (Registry, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryRegistry(), nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite logstore requires data_dir")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return NewSQLiteRegistry(filepath.Join(cfg.DataDir, "ark.db"))
	default:
		return nil, fmt.Errorf("unknown logstore type: %s", cfg.Type)
	}
}
