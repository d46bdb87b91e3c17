package watch

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("subscription closed")

// maxBuffer caps how many undelivered events a subscription holds. Events
// produced between Subscribe and the first Next call are buffered rather
// than dropped; past the cap the oldest are discarded.
const maxBuffer = 1024

// Subscription is a live, pattern-filtered feed of change events for one
// archive. It holds no archive state beyond its own buffer and pattern set.
type Subscription struct {
	hub      *Hub
	since    uint64
	patterns []string

	mu     sync.Mutex
	buf    []Event
	ready  chan struct{}
	closed bool
}

// Next blocks until an event is available, the context is done, or the
// subscription is closed.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			e := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return e, nil
		}
		if s.closed {
			s.mu.Unlock()
			return Event{}, ErrClosed
		}
		s.mu.Unlock()

		select {
		case <-s.ready:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Close stops delivery and releases the buffer. It never errors and is safe
// to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.buf = nil
	s.mu.Unlock()

	s.hub.remove(s)
	s.signal()
}

func (s *Subscription) deliver(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if len(s.buf) >= maxBuffer {
		s.buf = s.buf[1:]
	}
	s.buf = append(s.buf, e)
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// matches reports whether path passes the subscription's pattern filter.
// No patterns means match-all.
func (s *Subscription) matches(path string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	target := strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
	for _, p := range s.patterns {
		if matchGlob(p, target) {
			return true
		}
	}
	return false
}
