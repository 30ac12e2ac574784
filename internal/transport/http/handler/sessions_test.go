package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/admin-session-gate/internal/application/gate"
	"github.com/admin-session-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent_Anonymous(t *testing.T) {
	f := newFixture(t)
	h := NewSessionHandler(f.registry)

	rr := f.do(h.Current, http.MethodGet, "/v1/admin/session", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, false, resp["is_admin"])
	_, hasEmail := resp["email"]
	assert.False(t, hasEmail)
}

func TestCurrent_Admin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.MarkAdmin(context.Background(), "admin@example.org", "svc-token"))
	h := NewSessionHandler(f.registry)

	rr := f.do(h.Current, http.MethodGet, "/v1/admin/session", nil)

	var resp SessionEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.IsAdmin)
	assert.Equal(t, "admin@example.org", resp.Email)
	assert.NotNil(t, resp.VerifiedAt)
}

func TestCurrent_MissingSession(t *testing.T) {
	h := NewSessionHandler(newFixture(t).registry)
	rr := httptest.NewRecorder()
	h.Current(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout_ClearsFlagAndGate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.MarkAdmin(context.Background(), "admin@example.org", ""))
	f.login(t)
	g := f.registry.Acquire(f.sess.ID(), f.sess)
	require.Equal(t, gate.StateOTP, g.Snapshot().State)
	h := NewSessionHandler(f.registry)

	rr := f.do(h.Logout, http.MethodPost, "/v1/admin/logout", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, f.sess.IsAdmin())
	assert.True(t, g.Closed())
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	h := NewDashboardHandler()

	rr := f.do(h.Show, http.MethodGet, "/v1/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	require.NoError(t, f.sess.MarkAdmin(context.Background(), "admin@example.org", ""))
	rr = f.do(h.Show, http.MethodGet, "/v1/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rejected", &domain.RejectedError{StatusCode: 400, Message: "Invalid OTP"}, http.StatusUnauthorized},
		{"upstream 5xx", &domain.RejectedError{StatusCode: 503, Message: "maintenance"}, http.StatusBadGateway},
		{"unreachable", domain.ErrUnreachable, http.StatusBadGateway},
		{"busy", domain.ErrBusy, http.StatusConflict},
		{"closed", domain.ErrGateClosed, http.StatusConflict},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"bad request", domain.ErrBadRequest, http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"other", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
