package ark

import (
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// projectionCacheSize bounds how many historical views are kept materialized.
const projectionCacheSize = 32

// nodeState is the folded state of one path in a projection.
type nodeState struct {
	typ   NodeType
	refs  []string
	size  int64
	ctime time.Time
	mtime time.Time
}

// ListOptions controls List behavior.
type ListOptions struct {
	// Recursive enumerates the full subtree instead of immediate children.
	Recursive bool
	// WithStat pairs each name with its resolved Node.
	WithStat bool
}

// DirEntry is one List result: a name and, when requested, its node.
type DirEntry struct {
	Name string
	Node *Node
}

// TreeProjector computes the materialized directory tree of a change log.
// It keeps the current view incrementally up to date and folds the log on
// demand for point-in-time queries, caching those in an LRU keyed by version.
// Not safe for concurrent use on its own; the owning Engine serializes access.
type TreeProjector struct {
	log     *ChangeLog
	blocks  BlockStore
	current map[string]*nodeState
	cache   *lru.Cache[uint64, map[string]*nodeState]
}

// NewTreeProjector builds a projector over log, folding any entries it
// already contains.
func NewTreeProjector(log *ChangeLog, blocks BlockStore) *TreeProjector {
	cache, _ := lru.New[uint64, map[string]*nodeState](projectionCacheSize)
	p := &TreeProjector{
		log:     log,
		blocks:  blocks,
		current: make(map[string]*nodeState),
		cache:   cache,
	}
	for _, e := range log.Entries() {
		applyEntry(p.current, e)
	}
	return p
}

// Apply incorporates a freshly appended entry into the current view.
func (p *TreeProjector) Apply(e Entry) {
	applyEntry(p.current, e)
}

func applyEntry(view map[string]*nodeState, e Entry) {
	switch e.Kind {
	case KindPut:
		ns := &nodeState{
			typ:   e.Type,
			refs:  e.Refs,
			size:  e.Size,
			ctime: e.At,
			mtime: e.At,
		}
		if prev, ok := view[e.Path]; ok {
			ns.ctime = prev.ctime
		}
		view[e.Path] = ns
	case KindDelete:
		delete(view, e.Path)
	}
}

// viewAt returns the projection at the given version. Version 0 means latest.
func (p *TreeProjector) viewAt(version uint64) map[string]*nodeState {
	if version == 0 || version >= p.log.Latest() {
		return p.current
	}
	if view, ok := p.cache.Get(version); ok {
		return view
	}
	view := make(map[string]*nodeState)
	for _, e := range p.log.Entries()[:version] {
		applyEntry(view, e)
	}
	p.cache.Add(version, view)
	return view
}

// Resolve returns the node at path, folding entries up to version
// (0 = latest). A directory node exists implicitly when any descendant path
// exists, even without an explicit mkdir entry.
func (p *TreeProjector) Resolve(rawPath string, version uint64) (*Node, error) {
	path := NormalizePath(rawPath)
	view := p.viewAt(version)

	if path == "/" {
		return p.spanNode(path, view, nil), nil
	}
	if ns, ok := view[path]; ok {
		return p.buildNode(path, ns), nil
	}

	// Implicit directory: any descendant makes the path a directory.
	var children []*nodeState
	for k, ns := range view {
		if isDescendant(path, k) {
			children = append(children, ns)
		}
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return p.spanNode(path, view, children), nil
}

// buildNode materializes a Node from folded state, counting locally present
// blocks against the block store.
func (p *TreeProjector) buildNode(path string, ns *nodeState) *Node {
	n := &Node{
		Path:   path,
		Type:   ns.typ,
		Size:   ns.size,
		Blocks: uint32(len(ns.refs)),
		Mtime:  ns.mtime,
		Ctime:  ns.ctime,
	}
	for _, ref := range ns.refs {
		ok, err := p.blocks.Has(ref)
		if err == nil && ok {
			n.Downloaded++
		}
	}
	return n
}

// spanNode builds a directory node whose timestamps span its members:
// creation is the oldest member ctime, modification the newest member mtime.
// Used for the root and for implicit directories.
func (p *TreeProjector) spanNode(path string, view map[string]*nodeState, members []*nodeState) *Node {
	if members == nil {
		for _, ns := range view {
			members = append(members, ns)
		}
	}
	n := &Node{Path: path, Type: TypeDirectory}
	for _, ns := range members {
		if n.Ctime.IsZero() || ns.ctime.Before(n.Ctime) {
			n.Ctime = ns.ctime
		}
		if ns.mtime.After(n.Mtime) {
			n.Mtime = ns.mtime
		}
	}
	return n
}

// List enumerates a directory at version (0 = latest). Immediate children by
// default; with opts.Recursive the full subtree, where nested names echo the
// separator style of rawPath (forward or back slash) and carry no leading
// separator.
func (p *TreeProjector) List(rawPath string, opts ListOptions, version uint64) ([]DirEntry, error) {
	sep := "/"
	if strings.Contains(rawPath, "\\") {
		sep = "\\"
	}
	dir := NormalizePath(rawPath)

	node, err := p.Resolve(dir, version)
	if err != nil {
		return nil, err
	}
	if !node.IsDirectory() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	view := p.viewAt(version)
	prefix := dir + "/"
	if dir == "/" {
		prefix = "/"
	}

	// Collect relative paths of all subtree members, including directories
	// that exist only implicitly as prefixes of deeper paths.
	names := make(map[string]struct{})
	for k := range view {
		if !isDescendant(dir, k) {
			continue
		}
		rel := k[len(prefix):]
		if opts.Recursive {
			names[rel] = struct{}{}
			// Ancestor prefixes are directories in their own right.
			for i := 0; i < len(rel); i++ {
				if rel[i] == '/' {
					names[rel[:i]] = struct{}{}
				}
			}
		} else {
			if i := strings.IndexByte(rel, '/'); i >= 0 {
				rel = rel[:i]
			}
			names[rel] = struct{}{}
		}
	}

	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	out := make([]DirEntry, 0, len(ordered))
	for _, rel := range ordered {
		entry := DirEntry{Name: rel}
		if sep != "/" {
			entry.Name = strings.ReplaceAll(rel, "/", sep)
		}
		if opts.WithStat {
			n, err := p.Resolve(prefix+rel, version)
			if err != nil {
				return nil, err
			}
			entry.Node = n
		}
		out = append(out, entry)
	}
	return out, nil
}
