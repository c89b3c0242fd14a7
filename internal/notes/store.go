package notes

import (
	"encoding/json"
	"sync"
	"time"
)

// Record is one saved debate: the user's prep notes plus the session record
// the UI restores on reload. Both payloads are opaque blobs owned by the
// client.
type Record struct {
	SessionID string          `json:"session_id"`
	Notes     string          `json:"notes"`
	Session   json.RawMessage `json:"session,omitempty"`
	SavedAt   time.Time       `json:"saved_at"`
}

type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	// lastSession is the most recently saved record, restored by the UI
	// after a reload.
	lastSession string
	now         func() time.Time
}

func New() *Store {
	return &Store{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

func (s *Store) Save(sessionID, notes string, session json.RawMessage) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Record{
		SessionID: sessionID,
		Notes:     notes,
		Session:   session,
		SavedAt:   s.now().UTC(),
	}
	s.records[sessionID] = rec
	s.lastSession = sessionID
	return rec
}

func (s *Store) Get(sessionID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sessionID]
	return rec, ok
}

// Last returns the most recently saved record.
func (s *Store) Last() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSession == "" {
		return Record{}, false
	}
	rec, ok := s.records[s.lastSession]
	return rec, ok
}

func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	if s.lastSession == sessionID {
		s.lastSession = ""
	}
}
