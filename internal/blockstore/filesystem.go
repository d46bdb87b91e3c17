package blockstore

import (
	"fmt"
	"os"
	"path/filepath"

	"ark-go/internal/ark"
)

// FileSystemBlockStore is a filesystem-based implementation of the
// BlockStore interface. It stores blocks as files in a fanout directory
// structure keyed by ref prefix:
//
//	<root>/
//	  blocks/
//	    ab/
//	      abcdef...     (block files, named by SHA-256 ref)
type FileSystemBlockStore struct {
	name      string
	root      string
	blocksDir string
}

// NewFileSystemBlockStore creates a new filesystem block store rooted at the
// given path.
func NewFileSystemBlockStore(name, root string) (*FileSystemBlockStore, error) {
	blocksDir := filepath.Join(root, "blocks")
	if err := os.MkdirAll(blocksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blocks directory: %w", err)
	}

	return &FileSystemBlockStore{
		name:      name,
		root:      root,
		blocksDir: blocksDir,
	}, nil
}

// Put stores a block under its ref.
// The operation is idempotent: storing the same ref multiple times is safe.
func (s *FileSystemBlockStore) Put(ref string, data []byte) error {
	destPath, err := s.blockPath(ref)
	if err != nil {
		return err
	}

	// If the block already exists, skip (idempotent)
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create fanout directory: %w", err)
	}
	return writeAtomic(destPath, data)
}

// Get retrieves a block by ref.
func (s *FileSystemBlockStore) Get(ref string) ([]byte, error) {
	srcPath, err := s.blockPath(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("block not found: %s", ref)
		}
		return nil, fmt.Errorf("failed to read block: %w", err)
	}
	return data, nil
}

// Has reports whether a block is present on disk.
func (s *FileSystemBlockStore) Has(ref string) (bool, error) {
	path, err := s.blockPath(ref)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat block: %w", err)
	}
	return true, nil
}

// ValidateSetup verifies that the store directories are accessible.
func (s *FileSystemBlockStore) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("block store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("block store root is not a directory: %s", s.root)
	}

	info, err = os.Stat(s.blocksDir)
	if err != nil {
		return fmt.Errorf("blocks directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blocks path is not a directory: %s", s.blocksDir)
	}
	return nil
}

// blockPath maps a ref to its fanout location on disk.
func (s *FileSystemBlockStore) blockPath(ref string) (string, error) {
	if len(ref) < 3 {
		return "", fmt.Errorf("invalid block ref: %q", ref)
	}
	return filepath.Join(s.blocksDir, ref[:2], ref), nil
}

// writeAtomic writes data to the specified path using a temp file + rename.
func writeAtomic(destPath string, data []byte) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemBlockStore implements ark.BlockStore interface
var _ ark.BlockStore = (*FileSystemBlockStore)(nil)
