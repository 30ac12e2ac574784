package handler

import (
	"net/http"

	"github.com/admin-session-gate/internal/transport/http/middleware"
)

// SessionHandler exposes the admin session flag.
type SessionHandler struct {
	gates GateRegistry
}

func NewSessionHandler(gates GateRegistry) *SessionHandler {
	return &SessionHandler{gates: gates}
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	env := SessionEnvelope{IsAdmin: sess.IsAdmin()}
	if env.IsAdmin {
		env.Email = sess.Email()
		env.VerifiedAt = sess.VerifiedAt()
	}
	writeJSON(w, http.StatusOK, env)
}

// Logout clears the admin flag and drops any login gate still open for the session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.gates.Release(sess.ID())
	if err := sess.Logout(r.Context()); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
