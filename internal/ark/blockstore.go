package ark

import (
	"crypto/sha256"
	"encoding/hex"
)

// BlockStore provides durable, content-addressed storage for file content
// blocks. Blocks are bounded by the engine's block size, so the interface
// works on byte slices rather than streams.
type BlockStore interface {
	// Put stores a block under its ref.
	// The operation is idempotent: storing the same ref multiple times is safe.
	Put(ref string, data []byte) error

	// Get retrieves a block by ref.
	Get(ref string) ([]byte, error)

	// Has reports whether a block is locally present without fetching it.
	Has(ref string) (bool, error)

	// ValidateSetup verifies that the store is accessible and properly configured.
	ValidateSetup() error
}

// BlockRef computes the content address of a block: its SHA-256 checksum in hex.
func BlockRef(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
