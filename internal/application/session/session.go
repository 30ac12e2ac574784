// Package session owns the admin session flag. A Context is opened at the
// start of request handling from the persisted store, mutated only by the
// login gate's verify step, and torn down by an explicit logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/admin-session-gate/internal/domain"
	"github.com/admin-session-gate/internal/pkg/id"
)

// Store persists admin sessions.
type Store interface {
	Put(ctx context.Context, s *domain.AdminSession) error
	Get(ctx context.Context, sessionID string) (*domain.AdminSession, error)
	Revoke(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
}

// Manager opens session contexts against a Store.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Open loads the persisted state of sessionID. An empty or malformed id
// yields a fresh anonymous context with a new id. A well-formed id with no
// stored record stays anonymous under the same id, so a gate keyed by it
// survives between requests.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Context, error) {
	if sessionID == "" || !id.Valid(sessionID) {
		return &Context{manager: m, id: id.New(), fresh: true}, nil
	}
	c := &Context{manager: m, id: sessionID}
	rec, err := m.store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	c.admin = rec.IsAdmin
	c.email = rec.Email
	c.verifiedAt = rec.VerifiedAt
	return c, nil
}

// Context is the session flag of one browser session.
type Context struct {
	manager *Manager
	fresh   bool

	mu         sync.RWMutex
	id         string
	admin      bool
	email      string
	verifiedAt *time.Time
}

// ID is the current session id. It changes once, when MarkAdmin succeeds.
func (c *Context) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// Fresh reports whether the id was minted by Open rather than supplied by the caller.
func (c *Context) Fresh() bool { return c.fresh }

func (c *Context) IsAdmin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.admin
}

func (c *Context) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

func (c *Context) VerifiedAt() *time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verifiedAt
}

// MarkAdmin persists the flag after a server-confirmed OTP verification.
// The admin record is written under a newly minted id and the pre-login
// record is dropped, so an id handed out before authentication never
// carries admin rights. The in-memory state changes only once the store
// accepted the write; callers must reissue the session cookie for ID().
func (c *Context) MarkAdmin(ctx context.Context, email, token string) error {
	now := c.manager.now().UTC()
	newID := id.New()
	rec := &domain.AdminSession{
		SessionID:  newID,
		IsAdmin:    true,
		Email:      email,
		Token:      token,
		VerifiedAt: &now,
		ExpiresAt:  now.Add(c.manager.ttl).Unix(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.manager.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("persist admin session: %w", err)
	}
	c.mu.Lock()
	prevID := c.id
	c.id = newID
	c.admin = true
	c.email = email
	c.verifiedAt = &now
	c.mu.Unlock()

	if err := c.manager.store.Delete(ctx, prevID); err != nil {
		slog.Warn("could not drop pre-login session record", "session_id", prevID, "err", err)
	}
	return nil
}

// Logout clears the flag in the store and in memory.
func (c *Context) Logout(ctx context.Context) error {
	if err := c.manager.store.Revoke(ctx, c.ID()); err != nil {
		return fmt.Errorf("revoke admin session: %w", err)
	}
	c.mu.Lock()
	c.admin = false
	c.verifiedAt = nil
	c.mu.Unlock()
	return nil
}
