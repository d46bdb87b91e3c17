package ark

import (
	"bytes"
	"fmt"
	"sync"

	"ark-go/internal/watch"
)

// DefaultBlockSize is the chunk size used when splitting file content into
// content-addressed blocks.
const DefaultBlockSize = 64 * 1024

// Options configures engine construction.
type Options struct {
	Key     string // 64 hex chars; generated by Create when empty
	IsOwner bool

	Blocks BlockStore // required
	Log    Store      // optional durability for the change log
	Peers  PeerSource // optional, defaults to zero peers
	Logger Logger     // optional, defaults to NopLogger
	Clock  Clock      // optional, defaults to RealClock

	BlockSize int // optional, defaults to DefaultBlockSize
}

// Engine is the public-facing coordinator of one archive: it owns the change
// log and tree projection, enforces owner-only mutation, and serializes
// concurrent mutations so that versions stay dense and multi-entry operations
// appear atomic to readers.
type Engine struct {
	mu sync.RWMutex

	key       string
	isOwner   bool
	blockSize int

	blocks BlockStore
	log    *ChangeLog
	tree   *TreeProjector
	hub    *watch.Hub
	peers  PeerSource
	logger Logger
	clock  Clock
}

// Create constructs a brand-new archive: a fresh key unless one is supplied,
// an empty tree at version 0, and the initial manifest written as version 1.
// Construction is atomic: on any failure no archive state is left behind.
func Create(opts Options) (*Engine, error) {
	if opts.Key == "" {
		key, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		opts.Key = key
	}
	opts.IsOwner = true

	e, err := newEngine(opts, NewChangeLog(opts.Log))
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writeManifestLocked(Manifest{URL: e.url()}); err != nil {
		return nil, fmt.Errorf("writing initial manifest: %w", err)
	}

	e.logger.Info("archive created", "key", e.key)
	return e, nil
}

// Open constructs an engine over an existing archive, replaying the
// persisted change log from opts.Log.
func Open(opts Options) (*Engine, error) {
	if opts.Log == nil {
		return nil, fmt.Errorf("%w: opening an archive requires a log store", ErrInvalidArgument)
	}
	log, err := LoadChangeLog(opts.Log)
	if err != nil {
		return nil, err
	}
	e, err := newEngine(opts, log)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("archive opened", "key", e.key, "version", log.Latest())
	return e, nil
}

func newEngine(opts Options, log *ChangeLog) (*Engine, error) {
	if !validKey(opts.Key) {
		return nil, fmt.Errorf("%w: archive key must be %d hex characters", ErrInvalidArgument, KeyLength)
	}
	if opts.Blocks == nil {
		return nil, fmt.Errorf("%w: a block store is required", ErrInvalidArgument)
	}
	if opts.Peers == nil {
		opts.Peers = StaticPeerSource(0)
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}

	return &Engine{
		key:       opts.Key,
		isOwner:   opts.IsOwner,
		blockSize: opts.BlockSize,
		blocks:    opts.Blocks,
		log:       log,
		tree:      NewTreeProjector(log, opts.Blocks),
		hub:       watch.NewHub(),
		peers:     opts.Peers,
		logger:    opts.Logger,
		clock:     opts.Clock,
	}, nil
}

// Key returns the archive key.
func (e *Engine) Key() string { return e.key }

// URL returns the canonical archive URL.
func (e *Engine) URL() string { return e.url() }

// IsOwner reports whether this replica may mutate the archive.
func (e *Engine) IsOwner() bool { return e.isOwner }

// Version returns the latest log version.
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Latest()
}

func (e *Engine) url() string {
	return Locator{Key: e.key}.URL()
}

// Stat resolves a path at the latest version.
func (e *Engine) Stat(path string) (*Node, error) {
	return e.StatAt(path, 0)
}

// StatAt resolves a path at a point-in-time version (0 = latest).
func (e *Engine) StatAt(path string, version uint64) (*Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Resolve(path, version)
}

// Readdir enumerates a directory at the latest version.
func (e *Engine) Readdir(path string, opts ListOptions) ([]DirEntry, error) {
	return e.ReaddirAt(path, opts, 0)
}

// ReaddirAt enumerates a directory at a point-in-time version (0 = latest).
func (e *Engine) ReaddirAt(path string, opts ListOptions, version uint64) ([]DirEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.List(path, opts, version)
}

// ReadFile returns a file's raw content at the latest version.
// Fails with ErrNotFound when the path is absent or is a directory.
func (e *Engine) ReadFile(path string) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.readFileLocked(NormalizePath(path))
}

// ReadFileString returns a file's content as text in the given encoding.
func (e *Engine) ReadFileString(path string, enc Encoding) (string, error) {
	e.mu.RLock()
	data, err := e.readFileLocked(NormalizePath(path))
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}
	return enc.Encode(data)
}

func (e *Engine) readFileLocked(path string) ([]byte, error) {
	ns, ok := e.tree.current[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if ns.typ == TypeDirectory {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	var buf bytes.Buffer
	buf.Grow(int(ns.size))
	for _, ref := range ns.refs {
		block, err := e.blocks.Get(ref)
		if err != nil {
			return nil, fmt.Errorf("fetching block %s: %w", ref, err)
		}
		buf.Write(block)
	}
	return buf.Bytes(), nil
}

// WriteFile creates or overwrites a file with raw bytes. An overwrite
// advances the version by exactly one and leaves every other path untouched.
func (e *Engine) WriteFile(path string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeFileLocked(NormalizePath(path), data)
}

// WriteFileString decodes text per enc and writes the resulting bytes.
func (e *Engine) WriteFileString(path string, text string, enc Encoding) error {
	data, err := enc.Decode(text)
	if err != nil {
		return err
	}
	return e.WriteFile(path, data)
}

func (e *Engine) writeFileLocked(path string, data []byte) error {
	if err := e.requireOwner(); err != nil {
		return err
	}
	if path == "/" {
		return fmt.Errorf("%w: / is a directory", ErrAlreadyExists)
	}
	if n, err := e.tree.Resolve(path, 0); err == nil && n.IsDirectory() {
		return fmt.Errorf("%w: %s is a directory", ErrAlreadyExists, path)
	}
	if err := e.requireParentDir(path); err != nil {
		return err
	}

	refs, err := e.storeBlocks(data)
	if err != nil {
		return err
	}
	if err := e.appendLocked(KindPut, TypeFile, path, refs, int64(len(data))); err != nil {
		return err
	}
	e.logger.Debug("file written", "path", path, "size", len(data))
	return nil
}

// Mkdir creates an explicit directory entry.
func (e *Engine) Mkdir(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(); err != nil {
		return err
	}

	p := NormalizePath(path)
	if p == "/" {
		return fmt.Errorf("%w: /", ErrAlreadyExists)
	}
	if _, err := e.tree.Resolve(p, 0); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, p)
	}
	if err := e.requireParentDir(p); err != nil {
		return err
	}
	return e.appendLocked(KindPut, TypeDirectory, p, nil, 0)
}

// Unlink removes a file. Directories must use Rmdir.
func (e *Engine) Unlink(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(); err != nil {
		return err
	}

	p := NormalizePath(path)
	n, err := e.tree.Resolve(p, 0)
	if err != nil {
		return err
	}
	if n.IsDirectory() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, p)
	}
	return e.appendLocked(KindDelete, TypeFile, p, nil, 0)
}

// Rmdir removes an empty directory.
func (e *Engine) Rmdir(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(); err != nil {
		return err
	}

	p := NormalizePath(path)
	if p == "/" {
		return fmt.Errorf("%w: cannot remove the root", ErrInvalidArgument)
	}
	n, err := e.tree.Resolve(p, 0)
	if err != nil {
		return err
	}
	if !n.IsDirectory() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotFound, p)
	}
	for k := range e.tree.current {
		if isDescendant(p, k) {
			return fmt.Errorf("%w: %s", ErrNotEmpty, p)
		}
	}
	return e.appendLocked(KindDelete, TypeDirectory, p, nil, 0)
}

// History returns the change log window selected by opts, oldest first
// unless opts.Reverse.
func (e *Engine) History(opts HistoryOptions) ([]Change, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entries, err := e.log.Slice(opts.Start, opts.End, opts.Reverse)
	if err != nil {
		return nil, err
	}
	out := make([]Change, len(entries))
	for i, entry := range entries {
		c := Change{Path: entry.Path, Version: entry.Version, Type: ChangePut}
		if entry.Kind == KindDelete {
			c.Type = ChangeDel
		}
		out[i] = c
	}
	return out, nil
}

// ActivityStream subscribes to future mutations, optionally filtered by
// glob patterns. Mutations that happened before the call are never delivered;
// mutations racing the first Next call are buffered, not dropped.
func (e *Engine) ActivityStream(patterns ...string) *watch.Subscription {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hub.Subscribe(e.log.Latest(), patterns...)
}

// HistoryOptions selects a window of the change log.
// Start below 1 clamps to the beginning. End of zero or below means through
// the latest version, inclusive; a concrete positive End is exclusive.
type HistoryOptions struct {
	Start   int64
	End     int64
	Reverse bool
}

// ChangeType tags a history record as a put or a delete.
type ChangeType string

const (
	ChangePut ChangeType = "put"
	ChangeDel ChangeType = "del"
)

// Change is one history record projected from a log entry.
type Change struct {
	Path    string
	Version uint64
	Type    ChangeType
}

// requireOwner gates every mutating operation.
func (e *Engine) requireOwner() error {
	if !e.isOwner {
		return fmt.Errorf("%w: archive %s is read-only", ErrPermissionDenied, e.key)
	}
	return nil
}

// requireParentDir fails with ErrParentMissing unless the immediate parent
// of path exists as a directory.
func (e *Engine) requireParentDir(path string) error {
	parent := ParentPath(path)
	if parent == "/" {
		return nil
	}
	n, err := e.tree.Resolve(parent, 0)
	if err != nil || !n.IsDirectory() {
		return fmt.Errorf("%w: %s", ErrParentMissing, parent)
	}
	return nil
}

// storeBlocks chunks data and stores each block content-addressed.
func (e *Engine) storeBlocks(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	refs := make([]string, 0, (len(data)+e.blockSize-1)/e.blockSize)
	for off := 0; off < len(data); off += e.blockSize {
		end := off + e.blockSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]
		ref := BlockRef(chunk)
		if err := e.blocks.Put(ref, chunk); err != nil {
			return nil, fmt.Errorf("storing block: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// appendLocked records one mutation: append to the log, fold into the
// current projection, and dispatch to subscriptions before returning, so a
// writer's own change is visible to pre-existing subscriptions by the time
// it sees success.
func (e *Engine) appendLocked(kind Kind, typ NodeType, path string, refs []string, size int64) error {
	entry := Entry{
		Path: path,
		Kind: kind,
		Type: typ,
		Refs: refs,
		Size: size,
		At:   e.clock.Now(),
	}
	version, err := e.log.Append(entry)
	if err != nil {
		return err
	}
	entry.Version = version
	e.tree.Apply(entry)
	e.hub.Publish(watch.Event{Path: path, Version: version})
	return nil
}
