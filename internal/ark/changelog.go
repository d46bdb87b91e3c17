package ark

import "fmt"

// ChangeLog is the append-only, monotonically versioned sequence of path
// mutations that an archive is derived from. It is not safe for concurrent
// use on its own; the owning Engine serializes all access.
type ChangeLog struct {
	entries []Entry
	store   Store // optional durability; nil means memory-only
}

// NewChangeLog creates an empty change log. store may be nil.
func NewChangeLog(store Store) *ChangeLog {
	return &ChangeLog{store: store}
}

// LoadChangeLog replays all persisted entries from store into a new log.
func LoadChangeLog(store Store) (*ChangeLog, error) {
	entries, err := store.LoadEntries()
	if err != nil {
		return nil, fmt.Errorf("loading change log: %w", err)
	}
	for i, e := range entries {
		if e.Version != uint64(i+1) {
			return nil, fmt.Errorf("corrupt change log: entry %d has version %d", i, e.Version)
		}
	}
	return &ChangeLog{entries: entries, store: store}, nil
}

// Latest returns the highest version in the log, 0 when empty.
func (l *ChangeLog) Latest() uint64 {
	return uint64(len(l.entries))
}

// Append assigns the next version to e, persists it, and adds it to the log.
// Validation happens upstream in the engine; Append itself only fails when
// the backing store does.
func (l *ChangeLog) Append(e Entry) (uint64, error) {
	e.Version = l.Latest() + 1
	if l.store != nil {
		if err := l.store.AppendEntry(e); err != nil {
			return 0, fmt.Errorf("persisting entry %d: %w", e.Version, err)
		}
	}
	l.entries = append(l.entries, e)
	return e.Version, nil
}

// Entries returns the backing slice. Callers must not modify it.
func (l *ChangeLog) Entries() []Entry {
	return l.entries
}

// Slice returns the entries in the half-open version window [start, end).
// A start below 1 clamps to the beginning of the log. An end of zero or below
// is the end-of-log sentinel: the window runs through the latest version,
// inclusive. When end is a concrete positive bound it must exceed start, else
// ErrInvalidRange. reverse flips the output ordering without changing which
// entries are selected.
func (l *ChangeLog) Slice(start, end int64, reverse bool) ([]Entry, error) {
	if end > 0 && end <= start {
		return nil, fmt.Errorf("%w: start %d, end %d", ErrInvalidRange, start, end)
	}

	first := start
	if first < 1 {
		first = 1
	}
	last := int64(l.Latest())
	if end > 0 && end-1 < last {
		last = end - 1
	}
	if first > last {
		return []Entry{}, nil
	}

	out := make([]Entry, 0, last-first+1)
	for v := first; v <= last; v++ {
		out = append(out, l.entries[v-1])
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}
