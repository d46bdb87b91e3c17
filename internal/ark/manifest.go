package ark

import (
	"encoding/json"
	"fmt"
	"time"
)

// ManifestPath is the reserved path of the archive manifest entry.
const ManifestPath = "/ark.json"

// Manifest is the projection of the reserved manifest entry.
type Manifest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ManifestPatch carries the fields Configure should update. Nil fields are
// left unchanged.
type ManifestPatch struct {
	Title       *string
	Description *string
}

// Info is the archive summary returned by Info.
type Info struct {
	Key         string
	URL         string
	Title       string
	Description string
	Version     uint64
	Peers       int
	IsOwner     bool
	Mtime       time.Time
}

// Configure updates the manifest's title and description as a single new
// log entry. On a read-only archive it always fails with ErrPermissionDenied,
// regardless of the patch contents.
func (e *Engine) Configure(patch ManifestPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(); err != nil {
		return err
	}

	m := e.readManifestLocked()
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if err := e.writeManifestLocked(m); err != nil {
		return err
	}
	e.logger.Debug("manifest configured", "title", m.Title)
	return nil
}

// Info returns the archive summary. All fields are present regardless of
// value; manifest fields are empty when the manifest is missing or unreadable.
func (e *Engine) Info() Info {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m := e.readManifestLocked()
	info := Info{
		Key:         e.key,
		URL:         e.url(),
		Title:       m.Title,
		Description: m.Description,
		Version:     e.log.Latest(),
		Peers:       e.peers.PeerCount(e.key),
		IsOwner:     e.isOwner,
	}
	if entries := e.log.Entries(); len(entries) > 0 {
		info.Mtime = entries[len(entries)-1].At
	}
	return info
}

// readManifestLocked loads the current manifest, falling back to an empty
// one carrying only the URL.
func (e *Engine) readManifestLocked() Manifest {
	fallback := Manifest{URL: e.url()}
	data, err := e.readFileLocked(ManifestPath)
	if err != nil {
		return fallback
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		e.logger.Warn("unreadable manifest", "key", e.key, "error", err)
		return fallback
	}
	m.URL = fallback.URL
	return m
}

// writeManifestLocked stores the manifest as a regular file entry.
func (e *Engine) writeManifestLocked(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	refs, err := e.storeBlocks(data)
	if err != nil {
		return err
	}
	return e.appendLocked(KindPut, TypeFile, ManifestPath, refs, int64(len(data)))
}
