// Package memory provides the in-process session store used by a single
// long-running relay instance. State is lost on restart; multi-instance
// deployments should use the redis-backed store instead.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wallbox/relay/domain"
	"github.com/wallbox/relay/repository"
)

// SessionStore is a thread-safe in-memory session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ClientSession
	timeout  time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty store whose sessions expire after the
// given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*domain.ClientSession),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Resolve returns the live session for id or mints a fresh one. Expired
// records are dropped on touch rather than reused: stale cookies must not
// authenticate past the timeout even before the sweep runs.
func (s *SessionStore) Resolve(_ context.Context, id string) (*domain.ClientSession, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			if sess.IsExpired(now, s.timeout) {
				delete(s.sessions, id)
			} else {
				sess.LastAccess = now
				return snapshot(sess), false, nil
			}
		}
	}

	sess := &domain.ClientSession{
		ID:         uuid.NewString(),
		Cookies:    make(map[string]string),
		LastAccess: now,
	}
	s.sessions[sess.ID] = sess
	return snapshot(sess), true, nil
}

// MergeCookies overwrites same-named cookies, keeps the rest, and bumps
// last access. Unknown ids are ignored.
func (s *SessionStore) MergeCookies(_ context.Context, id string, cookies map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	for name, value := range cookies {
		sess.Cookies[name] = value
	}
	sess.LastAccess = s.now()
	return nil
}

// Delete removes the session immediately.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Sweep removes every session idle past the timeout.
func (s *SessionStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.IsExpired(now, s.timeout) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// snapshot copies the record so callers never share the live cookie map
// with a concurrent merge.
func snapshot(sess *domain.ClientSession) *domain.ClientSession {
	cp := &domain.ClientSession{
		ID:         sess.ID,
		Cookies:    make(map[string]string, len(sess.Cookies)),
		LastAccess: sess.LastAccess,
	}
	for name, value := range sess.Cookies {
		cp.Cookies[name] = value
	}
	return cp
}

var _ repository.SessionStore = (*SessionStore)(nil)
