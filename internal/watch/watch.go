// Package watch delivers live change notifications for an archive's mutation
// stream, filtered by glob-style path patterns.
package watch

import (
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Event is one change notification: the mutated path and the log version
// that produced it.
type Event struct {
	Path    string
	Version uint64
}

// Hub fans mutation events out to subscriptions. Publish is called by the
// engine inside its mutation critical section, so delivery to a
// subscription's buffer completes before the mutating call returns.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscription. sinceVersion is the log version
// current at creation: only events with a strictly greater version are
// delivered, so historical mutations never leak into a new subscription.
// With no patterns the subscription matches every path.
func (h *Hub) Subscribe(sinceVersion uint64, patterns ...string) *Subscription {
	s := &Subscription{
		hub:      h,
		since:    sinceVersion,
		patterns: normalizePatterns(patterns),
		ready:    make(chan struct{}, 1),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish delivers an event to every open subscription whose creation
// version precedes it and whose patterns match its path.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		if e.Version <= s.since {
			continue
		}
		if !s.matches(e.Path) {
			continue
		}
		s.deliver(e)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ReplaceAll(p, "\\", "/")
		p = strings.TrimPrefix(p, "/")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchGlob(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	if err != nil {
		return false
	}
	return ok
}
