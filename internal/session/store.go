package session

import (
	"sync"
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
)

// Store keeps per-session state in memory: the developer admin filter and
// the sessions ended by logout. Nothing here is persisted; a restart drops
// every filter, which is the same as every developer clearing theirs.
type Store struct {
	mu      sync.RWMutex
	filters map[string]access.AdminFilter
	revoked map[string]time.Time
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		filters: make(map[string]access.AdminFilter),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// FilterFor returns the zero filter for unknown or empty session ids.
func (s *Store) FilterFor(sessionID string) access.AdminFilter {
	if sessionID == "" {
		return access.AdminFilter{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters[sessionID]
}

func (s *Store) Select(sessionID, adminID string) access.AdminFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filters[sessionID].Select(adminID)
	s.filters[sessionID] = f
	return f
}

func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.filters, sessionID)
}

// ClearAdmin drops every filter that names adminID and reports how many.
func (s *Store) ClearAdmin(adminID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sid, f := range s.filters {
		if f.AdminID() == adminID {
			delete(s.filters, sid)
			n++
		}
	}
	return n
}

// Revoke marks a session as ended until its last token expires.
func (s *Store) Revoke(sessionID string, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.revoked[sessionID] = until
	delete(s.filters, sessionID)
}

func (s *Store) Revoked(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	until, ok := s.revoked[sessionID]
	return ok && s.now().Before(until)
}

func (s *Store) pruneLocked() {
	now := s.now()
	for sid, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, sid)
		}
	}
}
