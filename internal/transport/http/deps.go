package http

import (
	"context"

	"github.com/admin-session-gate/internal/application/session"
	"github.com/admin-session-gate/internal/transport/http/handler"
	appmiddleware "github.com/admin-session-gate/internal/transport/http/middleware"
)

// SessionOpener is the minimal interface the router requires from the session manager.
type SessionOpener interface {
	Open(ctx context.Context, sessionID string) (*session.Context, error)
}

// Deps holds everything the router wires into handlers and middleware.
type Deps struct {
	Sessions SessionOpener
	Gates    handler.GateRegistry
	Tokens   appmiddleware.TokenProvider
}
