package ark

import (
	"fmt"
	"sort"
	"strings"
)

// pendingOp is one validated mutation of a multi-entry operation. Copy and
// Rename validate their whole precondition set up front, collect the ops,
// and only then append — so a multi-entry operation cannot fail midway and
// readers never observe partial application.
type pendingOp struct {
	kind Kind
	typ  NodeType
	path string
	refs []string
	size int64
}

// Copy duplicates src under dst. For a file the destination content is
// overwritten. For a directory the whole subtree is duplicated; when dst
// already exists as a directory the trees are merged: files present on both
// sides take the source content, files unique to the destination survive.
func (e *Engine) Copy(src, dst string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(); err != nil {
		return err
	}

	s, d := NormalizePath(src), NormalizePath(dst)
	srcNode, err := e.tree.Resolve(s, 0)
	if err != nil {
		return err
	}
	if s == d {
		return nil
	}
	if isDescendant(s, d) {
		return fmt.Errorf("%w: cannot copy %s into itself", ErrInvalidArgument, s)
	}

	var ops []pendingOp
	if srcNode.IsFile() {
		ops, err = e.copyFileOps(s, d)
	} else {
		ops, err = e.copyTreeOps(s, d)
	}
	if err != nil {
		return err
	}

	for _, op := range ops {
		if err := e.appendLocked(op.kind, op.typ, op.path, op.refs, op.size); err != nil {
			return err
		}
	}
	e.logger.Debug("copied", "src", s, "dst", d, "entries", len(ops))
	return nil
}

// Rename moves src to dst: a copy followed by a recursive delete of the
// source, applied as one logical operation. Unlike Copy it refuses to merge:
// an existing destination of any type fails with ErrAlreadyExists.
func (e *Engine) Rename(src, dst string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(); err != nil {
		return err
	}

	s, d := NormalizePath(src), NormalizePath(dst)
	srcNode, err := e.tree.Resolve(s, 0)
	if err != nil {
		return err
	}
	if _, err := e.tree.Resolve(d, 0); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, d)
	}
	if isDescendant(s, d) {
		return fmt.Errorf("%w: cannot move %s into itself", ErrInvalidArgument, s)
	}

	var ops []pendingOp
	if srcNode.IsFile() {
		ops, err = e.copyFileOps(s, d)
	} else {
		ops, err = e.copyTreeOps(s, d)
	}
	if err != nil {
		return err
	}
	ops = append(ops, e.deleteTreeOps(s)...)

	for _, op := range ops {
		if err := e.appendLocked(op.kind, op.typ, op.path, op.refs, op.size); err != nil {
			return err
		}
	}
	e.logger.Debug("renamed", "src", s, "dst", d, "entries", len(ops))
	return nil
}

// copyFileOps validates a single-file copy and returns its one put.
func (e *Engine) copyFileOps(s, d string) ([]pendingOp, error) {
	if dn, err := e.tree.Resolve(d, 0); err == nil && dn.IsDirectory() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrAlreadyExists, d)
	}
	if err := e.requireParentDir(d); err != nil {
		return nil, err
	}
	ns := e.tree.current[s]
	return []pendingOp{{kind: KindPut, typ: TypeFile, path: d, refs: ns.refs, size: ns.size}}, nil
}

// copyTreeOps validates a directory copy and returns puts for the whole
// subtree, honoring merge semantics when the destination directory exists.
func (e *Engine) copyTreeOps(s, d string) ([]pendingOp, error) {
	var ops []pendingOp

	dn, err := e.tree.Resolve(d, 0)
	switch {
	case err == nil && dn.IsFile():
		return nil, fmt.Errorf("%w: %s is a file", ErrAlreadyExists, d)
	case err != nil:
		if err := e.requireParentDir(d); err != nil {
			return nil, err
		}
		ops = append(ops, pendingOp{kind: KindPut, typ: TypeDirectory, path: d})
	}

	for _, m := range e.subtreePaths(s, false) {
		if m == s {
			continue // the destination directory itself is handled above
		}
		target := d + strings.TrimPrefix(m, s)
		ns := e.tree.current[m]
		if ns.typ == TypeDirectory {
			if ex, ok := e.tree.current[target]; ok && ex.typ == TypeDirectory {
				continue // merge keeps the existing directory entry
			}
			ops = append(ops, pendingOp{kind: KindPut, typ: TypeDirectory, path: target})
			continue
		}
		ops = append(ops, pendingOp{kind: KindPut, typ: TypeFile, path: target, refs: ns.refs, size: ns.size})
	}
	return ops, nil
}

// deleteTreeOps returns deletes for every explicit node at or under s,
// children before parents.
func (e *Engine) deleteTreeOps(s string) []pendingOp {
	paths := e.subtreePaths(s, true)
	ops := make([]pendingOp, 0, len(paths))
	for _, m := range paths {
		ops = append(ops, pendingOp{kind: KindDelete, typ: e.tree.current[m].typ, path: m})
	}
	return ops
}

// subtreePaths lists explicit node paths at or under root in stable order.
// deepestFirst reverses the ordering so children precede their parents.
func (e *Engine) subtreePaths(root string, deepestFirst bool) []string {
	var paths []string
	for k := range e.tree.current {
		if k == root || isDescendant(root, k) {
			paths = append(paths, k)
		}
	}
	sort.Strings(paths)
	if deepestFirst {
		for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
			paths[i], paths[j] = paths[j], paths[i]
		}
	}
	return paths
}
