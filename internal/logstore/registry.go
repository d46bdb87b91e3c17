// Package logstore persists archive change logs and the local archive
// registry. The sqlite implementation is the durable backend; the memory
// implementation serves tests and throwaway configurations.
package logstore

import (
	"time"

	"ark-go/internal/ark"
)

// ArchiveRecord is one row of the local archive registry.
type ArchiveRecord struct {
	Key       string
	IsOwner   bool
	CreatedAt time.Time
}

// Registry tracks which archives exist locally and hands out per-archive
// log stores.
type Registry interface {
	// CreateArchive registers a new archive. Fails if the key is taken.
	CreateArchive(key string, isOwner bool) error

	// GetArchive returns the record for a key, or nil when unknown.
	GetArchive(key string) (*ArchiveRecord, error)

	// ListArchives returns all records, oldest first.
	ListArchives() ([]*ArchiveRecord, error)

	// ForArchive returns the log store scoped to one archive's entries.
	ForArchive(key string) ark.Store

	// Close releases the backing resources.
	Close() error
}
