package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/admin-session-gate/internal/application/gate"
	"github.com/admin-session-gate/internal/domain"
	"github.com/admin-session-gate/internal/pkg/validate"
	"github.com/admin-session-gate/internal/transport/http/middleware"
)

// GateRegistry hands out the login gate bound to a browser session.
type GateRegistry interface {
	Acquire(sessionID string, sess gate.Session) *gate.Gate
	Release(sessionID string)
}

// CookieIssuer sets the session cookie for an id.
type CookieIssuer interface {
	Issue(w http.ResponseWriter, sessionID string) error
}

// GateHandler drives the two-step admin login.
type GateHandler struct {
	gates         GateRegistry
	cookies       CookieIssuer
	dashboardPath string
}

func NewGateHandler(gates GateRegistry, cookies CookieIssuer, dashboardPath string) *GateHandler {
	return &GateHandler{gates: gates, cookies: cookies, dashboardPath: dashboardPath}
}

// State returns the current gate snapshot so the client can render the
// form and the countdown.
func (h *GateHandler) State(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	g := h.gates.Acquire(sess.ID(), sess)
	writeJSON(w, http.StatusOK, GateEnvelope{Gate: g.Snapshot()})
}

func (h *GateHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var attempt domain.LoginAttempt
	if err := json.NewDecoder(r.Body).Decode(&attempt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(attempt); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	g := h.gates.Acquire(sess.ID(), sess)
	snap, err := g.SubmitCredentials(r.Context(), attempt.Email, attempt.Password)
	if err != nil {
		h.gateError(w, snap, err)
		return
	}
	writeJSON(w, http.StatusOK, GateEnvelope{Gate: snap})
}

// EnterCode stores the digits typed so far.
func (h *GateHandler) EnterCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var draft domain.OTPDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(draft); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	snap, err := h.gates.Acquire(sess.ID(), sess).EnterCode(draft.OTP)
	if err != nil {
		h.gateError(w, snap, err)
		return
	}
	writeJSON(w, http.StatusOK, GateEnvelope{Gate: snap})
}

// VerifyOTP submits the code. A verified gate is released, the cookie is
// reissued for the rotated session id and the client is pointed at the
// dashboard.
func (h *GateHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var sub domain.OTPSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(sub); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	preLoginID := sess.ID()
	g := h.gates.Acquire(preLoginID, sess)
	snap, err := g.SubmitOTP(r.Context(), sub.OTP)
	if err != nil {
		h.gateError(w, snap, err)
		return
	}
	h.gates.Release(preLoginID)
	if err := h.cookies.Issue(w, sess.ID()); err != nil {
		slog.Warn("could not sign admin session cookie", "session_id", sess.ID(), "err", err)
		writeError(w, http.StatusInternalServerError, "could not start session")
		return
	}
	slog.Info("admin session verified", "session_id", sess.ID(), "email", snap.Email)
	writeJSON(w, http.StatusOK, GateEnvelope{Gate: snap, Redirect: h.dashboardPath})
}

// Dismiss unmounts the gate, cancelling its countdown.
func (h *GateHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.gates.Release(sess.ID())
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "login gate closed"})
}

// gateError answers with the snapshot the gate settled on. The gate's own
// message wins over the raw error text when it has one.
func (h *GateHandler) gateError(w http.ResponseWriter, snap gate.Snapshot, err error) {
	msg := snap.Message
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, statusFor(err), GateEnvelope{Gate: snap, Error: msg})
}
