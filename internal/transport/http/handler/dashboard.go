package handler

import (
	"net/http"

	"github.com/admin-session-gate/internal/transport/http/middleware"
)

// DashboardHandler serves the admin landing resource behind RequireAdmin.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || !sess.IsAdmin() {
		writeError(w, http.StatusUnauthorized, "admin login required")
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{
		IsAdmin:    true,
		Email:      sess.Email(),
		VerifiedAt: sess.VerifiedAt(),
	})
}
