package session

import (
	"sync"
	"time"
)

// Store is the process-wide registry of live call sessions.
//
// The map lock is held only to find, insert or remove entries. Each entry
// carries its own lock, so a slow turn on one call never blocks another.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

type entry struct {
	mu      sync.Mutex
	sess    *Session
	removed bool
}

// NewStore returns an empty store. now defaults to time.Now when nil.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		entries: make(map[string]*entry),
		now:     now,
	}
}

// Update runs fn against the session for callID, creating it in
// StateGreeting first if the call is unknown. fn works on a copy; the copy
// replaces the stored session only when fn returns nil, so a failed turn
// leaves the session exactly as it was.
func (s *Store) Update(callID string, fn func(sess *Session, created bool) error) error {
	if callID == "" {
		return ErrEmptyCallID
	}

	for {
		e, created := s.fetchOrCreate(callID)

		e.mu.Lock()
		if e.removed {
			// Ended or reaped between lookup and lock; start a fresh session.
			e.mu.Unlock()
			continue
		}

		work := e.sess.Clone()
		err := fn(work, created)
		if err == nil {
			work.LastActivityAt = s.now()
			e.sess = work
		}
		e.mu.Unlock()
		return err
	}
}

func (s *Store) fetchOrCreate(callID string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[callID]; ok {
		return e, false
	}
	e := &entry{sess: New(callID, s.now())}
	s.entries[callID] = e
	return e, true
}

// Get returns a snapshot of the session for callID. It never creates one.
func (s *Store) Get(callID string) (*Session, error) {
	s.mu.Lock()
	e, ok := s.entries[callID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrNotFound
	}
	return e.sess.Clone(), nil
}

// Delete removes the session for callID and reports whether it existed.
// Deleting an unknown call is a no-op.
func (s *Store) Delete(callID string) bool {
	s.mu.Lock()
	e, ok := s.entries[callID]
	if ok {
		delete(s.entries, callID)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts sessions whose last activity is older than idle and returns
// their call ids. Sessions with a turn in flight are skipped.
func (s *Store) Sweep(idle time.Duration) []string {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for callID, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.sess.LastActivityAt.Before(cutoff) {
			e.removed = true
			delete(s.entries, callID)
			evicted = append(evicted, callID)
		}
		e.mu.Unlock()
	}
	return evicted
}
