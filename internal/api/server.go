// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api is the HTTP composition root.

It builds the chi router, installs the global middleware chain and mounts the
domain handlers under /api/v1. Permission gates live with the routes of each
domain; this package only decides the order in which callers are identified,
logged, limited and recovered.
*/
package api

import (
	stdctx "context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/access/role"
	"github.com/taibuivan/kassa/internal/platform/config"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/middleware"
	"github.com/taibuivan/kassa/internal/users/account"
	"github.com/taibuivan/kassa/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups every domain handler mounted by [NewServer].
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc

	// Auth serves registration, login, profile and approval.
	Auth *auth.Handler

	// Accounts serves administrative account management.
	Accounts *account.Handler

	// Roles serves the role registry.
	Roles *role.Handler

	// Assignments serves the roles held by one account.
	Assignments *role.AssignmentHandler

	// Permissions serves the read-only catalog.
	Permissions *permission.Handler
}

/*
NewServer builds the router.

# Middleware Order
 1. Request ID, so every later log line can carry it.
 2. Metrics and structured logging around everything below.
 3. Global per-IP rate limit and request timeout.
 4. Panic recovery.
 5. CORS, answering preflight before authentication.
 6. Bearer resolution. Anonymous requests pass; gates decide later.

Parameters:
  - context: Base context of every request, cancelled on shutdown
  - cfg: *config.Config
  - log: *slog.Logger
  - resolver: Token to identity resolution
  - h: Handlers
*/
func NewServer(context stdctx.Context, cfg *config.Config, log *slog.Logger, resolver middleware.IdentityResolver, h Handlers) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics)
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.Authenticate(resolver))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", middleware.MetricsHandler())

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		api.Route("/users", func(users chi.Router) {
			h.Accounts.RegisterRoutes(users)
			users.Route("/{id}/roles", h.Assignments.RegisterRoutes)
		})

		api.Route("/roles", h.Roles.RegisterRoutes)
		api.Route("/permissions", h.Permissions.RegisterRoutes)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			BaseContext:       func(net.Listener) stdctx.Context { return context },
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe blocks until the server is closed or fails.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown waits up to timeout for in-flight requests to finish.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := stdctx.WithTimeout(stdctx.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
