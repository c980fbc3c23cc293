package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const draftTTL = 30 * time.Minute

// Store holds active drafts in memory with a sliding TTL. Opening a new draft
// never inherits state from an old one; closing discards staged files.
type Store struct {
	mu     sync.Mutex
	drafts map[string]*Editor
}

// NewStore creates an empty draft store.
func NewStore() *Store {
	return &Store{drafts: map[string]*Editor{}}
}

// Open registers the editor under a fresh opaque id.
func (s *Store) Open(e *Editor) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	id := uuid.NewString()
	e.ID = id
	e.ExpiresAt = time.Now().Add(draftTTL)
	s.drafts[id] = e
	return id
}

// Get returns the draft and refreshes its TTL.
func (s *Store) Get(id string) (*Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	e, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	e.ExpiresAt = time.Now().Add(draftTTL)
	return e, true
}

// Close removes the draft, discarding any staged upload.
func (s *Store) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.drafts[id]; ok {
		e.Cancel()
		delete(s.drafts, id)
	}
}

func (s *Store) sweepLocked() {
	now := time.Now()
	for id, e := range s.drafts {
		if now.After(e.ExpiresAt) {
			e.Cancel()
			delete(s.drafts, id)
		}
	}
}
