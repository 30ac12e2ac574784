package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/admin-session-gate/internal/application/gate"
	"github.com/admin-session-gate/internal/application/session"
	"github.com/admin-session-gate/internal/config"
	"github.com/admin-session-gate/internal/infrastructure/authapi"
	"github.com/admin-session-gate/internal/infrastructure/dynamo"
	jwtinfra "github.com/admin-session-gate/internal/infrastructure/jwt"
	"github.com/admin-session-gate/internal/infrastructure/memory"
	transporthttp "github.com/admin-session-gate/internal/transport/http"
	"github.com/filecoin-project/go-clock"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	// The session cookie cannot be issued without signing keys.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	authClient := authapi.NewClient(cfg)
	gates := gate.NewRegistry(authClient, clock.New(), cfg.OTPTTL)
	gatesDone := make(chan struct{})
	go func() {
		gates.Run(ctx)
		close(gatesDone)
	}()

	deps := &transporthttp.Deps{
		Sessions: session.NewManager(store, cfg.SessionTTL),
		Gates:    gates,
		Tokens:   jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, auth=%s, sessions=%s)",
			cfg.AppPort, cfg.AppEnv, cfg.AuthServiceURL, cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	<-gatesDone
	log.Println("Server stopped")
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.SessionBackend {
	case "memory":
		log.Println("WARN: using in-memory session store; sessions are lost on restart")
		return memory.NewSessionRepo(), nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates the table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewSessionRepo(client, cfg.DynamoTables.AdminSessions), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}
