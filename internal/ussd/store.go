// Package ussd implements the feature-phone menu flow and its session
// state. Session state is transient by design: losing it on restart
// only resets in-flight menus.
package ussd

import (
	"sync"
	"time"
)

// Session holds the per-gateway-session menu state.
type Session struct {
	Phone    string
	Step     string
	lastSeen time.Time
}

// SessionStore is a bounded in-memory session map with TTL expiry. It
// replaces the usual module-global dictionary with an injected store
// that cannot grow without limit.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	capacity int
	ttl      time.Duration
}

// NewSessionStore creates a store holding at most capacity sessions,
// each expiring ttl after its last access.
func NewSessionStore(capacity int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get returns the live session for id, if any.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess, true
}

// Put stores or refreshes a session, evicting expired entries first and
// then the stalest entry if the store is still at capacity.
func (s *SessionStore) Put(id string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, existing := range s.sessions {
		if now.Sub(existing.lastSeen) > s.ttl {
			delete(s.sessions, key)
		}
	}

	if _, exists := s.sessions[id]; !exists && len(s.sessions) >= s.capacity {
		var oldestKey string
		var oldest time.Time
		for key, existing := range s.sessions {
			if oldestKey == "" || existing.lastSeen.Before(oldest) {
				oldestKey = key
				oldest = existing.lastSeen
			}
		}
		delete(s.sessions, oldestKey)
	}

	sess.lastSeen = now
	s.sessions[id] = sess
}

// Delete removes a session once its flow completes.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions, expired entries included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
