package stars

import (
	"context"
	"sync"
)

// Sequencer orders overlapping fetches. Each Begin supersedes the previous
// request: its context is cancelled and its result will be rejected by
// Accept. Results are therefore applied in issue order.
type Sequencer struct {
	mu      sync.Mutex
	latest  uint64
	cancel  context.CancelFunc
	stopped bool
}

// Begin starts request number seq. ok is false after Stop.
func (s *Sequencer) Begin(parent context.Context) (seq uint64, ctx context.Context, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return 0, nil, false
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	ctx, s.cancel = context.WithCancel(parent)
	return s.latest, ctx, true
}

// Accept reports whether the result of request seq may be applied, and
// releases its context.
func (s *Sequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || seq != s.latest {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

// InFlight reports whether the latest request has not been accepted yet.
func (s *Sequencer) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Stop cancels any in-flight request and rejects all later ones.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stopped reports whether Stop has been called.
func (s *Sequencer) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
