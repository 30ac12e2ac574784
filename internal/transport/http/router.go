package http

import (
	"net/http"

	"github.com/admin-session-gate/internal/config"
	"github.com/admin-session-gate/internal/transport/http/handler"
	appmiddleware "github.com/admin-session-gate/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true, // the session travels in a cookie
		MaxAge:           300,
	}))

	cookies := appmiddleware.NewCookies(deps.Tokens, appmiddleware.CookieOptions{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
	})
	sessionMw := appmiddleware.Session(cookies, deps.Sessions)
	loginRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.LoginRatePerSecond), cfg.LoginRateBurst, cfg.TrustProxyHeaders)

	healthH := handler.NewHealthHandler()
	gateH := handler.NewGateHandler(deps.Gates, cookies, cfg.DashboardPath)
	sessionH := handler.NewSessionHandler(deps.Gates)
	dashboardH := handler.NewDashboardHandler()

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes ───────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)

		// ── Session-bound routes ────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(sessionMw)

			r.Get("/admin/gate", gateH.State)
			r.Delete("/admin/gate", gateH.Dismiss)
			r.With(loginRL.Limit).Post("/admin/login", gateH.Login)
			r.Put("/admin/otp", gateH.EnterCode)
			r.With(loginRL.Limit).Post("/admin/otp", gateH.VerifyOTP)
			r.Get("/admin/session", sessionH.Current)
			r.Post("/admin/logout", sessionH.Logout)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireAdmin)

				r.Get("/admin/dashboard", dashboardH.Show)
			})
		})
	})

	return r
}
