package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/admin-session-gate/internal/application/gate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GateEnvelope wraps every login gate response. Error repeats the
// user-facing message when the request did not move the gate forward.
type GateEnvelope struct {
	Gate     gate.Snapshot `json:"gate"`
	Redirect string        `json:"redirect,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	IsAdmin    bool       `json:"is_admin"`
	Email      string     `json:"email,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
