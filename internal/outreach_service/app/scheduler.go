package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// followUpScheduler owns the one-shot follow-up timers, keyed by contact ID.
// Scheduling again for the same contact replaces the pending timer; a manual
// status change cancels it outright, so a fired task can never race an edit
// that happened before it.
type followUpScheduler struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

func newFollowUpScheduler() *followUpScheduler {
	return &followUpScheduler{timers: make(map[uuid.UUID]*time.Timer)}
}

// Schedule arms fn to run once after delay, replacing any pending task for id.
func (s *followUpScheduler) Schedule(id uuid.UUID, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending task for id, if any.
func (s *followUpScheduler) Cancel(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Stop cancels every pending task. Used on collection replacement and shutdown.
func (s *followUpScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
