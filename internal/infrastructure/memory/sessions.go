package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/admin-session-gate/internal/domain"
)

// SessionRepo stores admin sessions in memory (dev/test use).
// Contents are lost on restart.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]domain.AdminSession
	now      func() time.Time
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		sessions: make(map[string]domain.AdminSession),
		now:      time.Now,
	}
}

func (r *SessionRepo) Put(_ context.Context, s *domain.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionID] = *s
	return nil
}

func (r *SessionRepo) Get(_ context.Context, sessionID string) (*domain.AdminSession, error) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok || s.Expired(r.now()) {
		return nil, fmt.Errorf("admin session not found: %w", domain.ErrNotFound)
	}
	return &s, nil
}

func (r *SessionRepo) Revoke(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	s.IsAdmin = false
	s.Token = ""
	s.UpdatedAt = r.now().UTC()
	r.sessions[sessionID] = s
	return nil
}

func (r *SessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
