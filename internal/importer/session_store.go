package importer

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/training-management/internal"
)

var ErrSessionNotFound = internal.NewNotFoundError("import session not found", internal.ErrCodeImportSessionNotFound)

// SessionStore keeps import sessions in memory until they expire.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration, now func() time.Time) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &SessionStore{sessions: make(map[string]*Session), ttl: ttl, now: now}
}

func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Update runs fn on the owner's session under the store lock.
func (s *SessionStore) Update(id, ownerID string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupLocked(id, ownerID)
	if err != nil {
		return Session{}, err
	}
	err = fn(sess)
	return *sess, err
}

// Get returns a copy of the owner's session. Sessions of other users are
// reported as not found.
func (s *SessionStore) Get(id, ownerID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupLocked(id, ownerID)
	if err != nil {
		return Session{}, err
	}
	return *sess, nil
}

func (s *SessionStore) Delete(id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookupLocked(id, ownerID); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// Sweep drops expired sessions and reports how many went.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) lookupLocked(id, ownerID string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok || sess.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	if s.expiredLocked(sess) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) expiredLocked(sess *Session) bool {
	return s.now().Sub(sess.UpdatedAt) > s.ttl
}
