package ark

import (
	"io"
	"io/fs"
)

// FilesystemManager provides an interface for local filesystem operations
// used by import and export. It abstracts file access to enable testing
// without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a LocalPath object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*LocalPath, error)

	// Open opens a file for reading.
	Open(path *LocalPath) (io.ReadCloser, error)

	// Stat returns fresh file info for a path.
	// Unlike path.Info() which returns cached info from when the path was
	// resolved, this always fetches current info from the filesystem.
	Stat(path *LocalPath) (fs.FileInfo, error)

	// FindFiles discovers regular files under the given directory path.
	FindFiles(path *LocalPath, recursive bool) ([]*LocalPath, error)
}

// LocalPath represents a validated local filesystem path with cached
// metadata. LocalPath objects are created by FilesystemManager.Resolve()
// which validates the path exists, resolves it to an absolute path, and
// caches stat info. The name distinguishes it from archive paths, which
// are plain strings.
type LocalPath struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewLocalPath creates a LocalPath from its components.
// This is primarily for use by FilesystemManager implementations.
func NewLocalPath(absPath string, isDir bool, info fs.FileInfo) *LocalPath {
	return &LocalPath{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path as a string.
func (p *LocalPath) String() string {
	return p.absPath
}

// IsDir returns true if this path points to a directory.
func (p *LocalPath) IsDir() bool {
	return p.isDir
}

// Info returns the cached file info from when the path was resolved.
func (p *LocalPath) Info() fs.FileInfo {
	return p.info
}
