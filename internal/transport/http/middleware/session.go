package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/admin-session-gate/internal/application/session"
	jwtinfra "github.com/admin-session-gate/internal/infrastructure/jwt"
)

type contextKey string

const SessionKey contextKey = "admin_session"

// TokenProvider signs and verifies the session cookie.
type TokenProvider interface {
	Sign(sessionID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}

// SessionOpener loads the session context for an id.
type SessionOpener interface {
	Open(ctx context.Context, sessionID string) (*session.Context, error)
}

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Name   string
	Secure bool
}

// Cookies reads and issues the signed session cookie.
type Cookies struct {
	tokens TokenProvider
	opts   CookieOptions
}

func NewCookies(tokens TokenProvider, opts CookieOptions) *Cookies {
	return &Cookies{tokens: tokens, opts: opts}
}

// SessionID returns the id named by a valid cookie, or "".
func (c *Cookies) SessionID(r *http.Request) string {
	ck, err := r.Cookie(c.opts.Name)
	if err != nil {
		return ""
	}
	claims, err := c.tokens.Verify(ck.Value)
	if err != nil {
		return ""
	}
	return claims.SessionID
}

// Issue sets a cookie naming sessionID with a full lifetime.
func (c *Cookies) Issue(w http.ResponseWriter, sessionID string) error {
	signed, err := c.tokens.Sign(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.opts.Name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.tokens.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Session resolves the browser's session cookie into a *session.Context and
// injects it into the request context. A missing or invalid cookie starts a
// new anonymous session and sets a fresh cookie.
func Session(cookies *Cookies, sessions SessionOpener) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := cookies.SessionID(r)

			sess, err := sessions.Open(r.Context(), sessionID)
			if err != nil {
				slog.Warn("could not open admin session", "session_id", sessionID, "err", err)
				writeJSONError(w, http.StatusServiceUnavailable, "session store unavailable")
				return
			}

			if sess.ID() != sessionID {
				if err := cookies.Issue(w, sess.ID()); err != nil {
					slog.Warn("could not sign session cookie", "session_id", sess.ID(), "err", err)
					writeJSONError(w, http.StatusInternalServerError, "could not start session")
					return
				}
			}

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the session context injected by Session.
func SessionFromContext(ctx context.Context) (*session.Context, bool) {
	s, ok := ctx.Value(SessionKey).(*session.Context)
	return s, ok
}

// RequireAdmin allows access only to sessions whose admin flag is set.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok || !sess.IsAdmin() {
			writeJSONError(w, http.StatusUnauthorized, "admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
