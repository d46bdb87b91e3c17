package ark

import "time"

// Kind identifies the mutation a log entry records.
type Kind int

const (
	// KindPut creates or overwrites a node.
	KindPut Kind = iota
	// KindDelete removes a node.
	KindDelete
)

// NodeType distinguishes files from directories.
type NodeType int

const (
	TypeFile NodeType = iota
	TypeDirectory
)

// Entry is one record of the append-only change log. Versions are assigned in
// creation order starting at 1, dense and never reused.
type Entry struct {
	Version uint64
	Path    string // normalized absolute path, forward slashes
	Kind    Kind
	Type    NodeType
	Refs    []string // ordered block refs; nil for directories and deletes
	Size    int64
	At      time.Time
}

// Node is a materialized file or directory fact derived by folding log
// entries up to a version.
type Node struct {
	Path       string
	Type       NodeType
	Size       int64
	Blocks     uint32 // total content blocks
	Downloaded uint32 // blocks present in the local block store
	Mtime      time.Time
	Ctime      time.Time
}

// IsDirectory reports whether the node is a directory.
func (n *Node) IsDirectory() bool { return n.Type == TypeDirectory }

// IsFile reports whether the node is a regular file.
func (n *Node) IsFile() bool { return n.Type == TypeFile }
