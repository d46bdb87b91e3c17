package logstore

import (
	"fmt"
	"sync"
	"time"

	"ark-go/internal/ark"
)

// MemoryRegistry keeps archives and their logs in process memory.
type MemoryRegistry struct {
	mu       sync.RWMutex
	archives map[string]*ArchiveRecord
	logs     map[string]*memoryArchiveLog
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		archives: make(map[string]*ArchiveRecord),
		logs:     make(map[string]*memoryArchiveLog),
	}
}

func (r *MemoryRegistry) CreateArchive(key string, isOwner bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.archives[key]; ok {
		return fmt.Errorf("archive %s already registered", key)
	}
	r.archives[key] = &ArchiveRecord{Key: key, IsOwner: isOwner, CreatedAt: time.Now().UTC()}
	return nil
}

func (r *MemoryRegistry) GetArchive(key string) (*ArchiveRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.archives[key]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *MemoryRegistry) ListArchives() ([]*ArchiveRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ArchiveRecord, 0, len(r.archives))
	for _, rec := range r.archives {
		copied := *rec
		out = append(out, &copied)
	}
	sortRecordsByCreation(out)
	return out, nil
}

func (r *MemoryRegistry) ForArchive(key string) ark.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	log, ok := r.logs[key]
	if !ok {
		log = &memoryArchiveLog{}
		r.logs[key] = log
	}
	return log
}

func (r *MemoryRegistry) Close() error {
	return nil
}

func sortRecordsByCreation(recs []*ArchiveRecord) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j].CreatedAt.Before(recs[j-1].CreatedAt); j-- {
			recs[j], recs[j-1] = recs[j-1], recs[j]
		}
	}
}

// memoryArchiveLog holds one archive's entries.
type memoryArchiveLog struct {
	mu      sync.RWMutex
	entries []ark.Entry
}

func (l *memoryArchiveLog) AppendEntry(e ark.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
	return nil
}

func (l *memoryArchiveLog) LoadEntries() ([]ark.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ark.Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

// Compile-time check that MemoryRegistry implements the Registry interface
var _ Registry = (*MemoryRegistry)(nil)
