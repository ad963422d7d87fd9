// Package counter holds the star counter state and derives the per-digit
// view that renderers animate.
package counter

import (
	"sync"
	"time"
)

// State is the last two distinct star counts seen by the poller.
type State struct {
	Current  int64
	Previous int64
}

// Apply records v as the new current value. When v equals Current the state
// is returned unchanged and changed is false.
func (s State) Apply(v int64) (next State, changed bool) {
	if v == s.Current {
		return s, false
	}
	return State{Current: v, Previous: s.Current}, true
}

// Store guards a State shared between a poller and readers on other
// goroutines.
type Store struct {
	mu        sync.RWMutex
	state     State
	changedAt time.Time
}

// NewStore returns a store initialised to zero/zero.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Apply updates the stored state and reports whether it changed.
func (s *Store) Apply(v int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.state.Apply(v)
	if changed {
		s.state = next
		s.changedAt = time.Now()
	}
	return changed
}

// ChangedAt returns when the state last changed, or the zero time.
func (s *Store) ChangedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changedAt
}
