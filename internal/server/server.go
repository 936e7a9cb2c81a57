// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It decides:
//   - which URL patterns map to which handler functions
//   - what middleware runs on which routes
//   - how the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go opens the store and picks the token verifier and the captioning
// client, then hands them to New:
//
//	Deps.Store    → VoteService, ModerationService, ThemeService, ProfileService
//	Deps.API      → UploadActions → Orchestrator
//	Deps.Uploader → Orchestrator
//	Deps.Verifier → auth.OptionalSession middleware
//
// Every service receives repository interfaces, never a concrete store.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/config"
	"github.com/sakif/humor-hub/internal/handler"
	"github.com/sakif/humor-hub/internal/middleware"
	"github.com/sakif/humor-hub/internal/ratelimit"
	"github.com/sakif/humor-hub/internal/repository"
	"github.com/sakif/humor-hub/internal/service"
	"github.com/sakif/humor-hub/internal/validation"
)

// Deps are the external collaborators the server is built from.
type Deps struct {
	Store    repository.Store
	Verifier auth.Verifier
	API      service.CaptionAPI
	Uploader service.ImageUploader
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store and the upload rate limiter. Both are released
// when Start returns.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	deps    Deps
	limiter *ratelimit.KeyedRateLimiter
}

// New wires services, handlers and routes.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.Store == nil || deps.Verifier == nil || deps.API == nil || deps.Uploader == nil {
		return nil, errors.New("server: store, verifier, API and uploader are required")
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		deps:    deps,
		limiter: ratelimit.New(cfg.RateLimit.UploadRPS, cfg.RateLimit.UploadBurst, cfg.RateLimit.TTL),
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                         → liveness
// GET    /api/themes                      → theme catalog
// GET    /api/me                          → caller identity + profile
// GET    /api/captions/feed               → captions still to rate
// POST   /api/captions/{id}/vote          → record one vote
// POST   /api/upload/presigned-url        → upload step 1
// POST   /api/upload/register             → upload step 3
// POST   /api/upload/captions             → upload step 4
// POST   /api/upload                      → whole upload sequence (multipart)
// GET    /api/admin/dashboard             → totals + recent activity
// GET    /api/admin/users                 → profiles with activity counts
// GET    /api/admin/captions              → all captions
// PATCH  /api/admin/captions/{id}         → set visibility
// DELETE /api/admin/captions/{id}         → delete caption
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID, RealIP, Recoverer (chi built-ins)
//  2. CORS, so preflight requests never reach auth
//  3. OptionalSession attaches the caller's session, if any
//  4. Logger, which now sees both the request id and the user id
//
// Upload routes add a per-caller rate limit on top.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(auth.OptionalSession(s.deps.Verifier, s.logger))
	s.router.Use(middleware.Logger(s.logger))

	store := s.deps.Store
	v := validation.New()

	actions := service.NewUploadActions(s.deps.API, s.logger)
	orch := service.NewOrchestrator(actions, s.deps.Uploader, s.logger)

	themeHandler := handler.NewThemeHandler(service.NewThemeService(store))
	meHandler := handler.NewMeHandler(service.NewProfileService(store))
	captionHandler := handler.NewCaptionHandler(service.NewVoteService(store, store, store, s.logger), v, s.logger)
	adminHandler := handler.NewAdminHandler(service.NewModerationService(store, store, store, s.logger), v, s.logger)
	uploadHandler := handler.NewUploadHandler(actions, orch, v, s.config.Upload.MaxBytes, s.logger)

	s.router.Get("/healthz", handler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/themes", themeHandler.HandleList)
		r.Get("/me", meHandler.HandleMe)

		r.Get("/captions/feed", captionHandler.HandleFeed)
		r.Post("/captions/{id}/vote", captionHandler.HandleVote)

		r.Route("/upload", func(r chi.Router) {
			r.Use(middleware.RateLimit(s.limiter))
			r.Post("/", uploadHandler.HandleUpload)
			r.Post("/presigned-url", uploadHandler.HandlePresign)
			r.Post("/register", uploadHandler.HandleRegister)
			r.Post("/captions", uploadHandler.HandleCaptions)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", adminHandler.HandleDashboard)
			r.Get("/users", adminHandler.HandleUsers)
			r.Get("/captions", adminHandler.HandleCaptions)
			r.Patch("/captions/{id}", adminHandler.HandleSetVisibility)
			r.Delete("/captions/{id}", adminHandler.HandleDelete)
		})
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests (server.shutdown_timeout)
//  3. Stop the limiter sweep and close the store
//
// WriteTimeout is generous: the one-shot upload waits on caption generation.
func (s *Server) Start() error {
	defer s.deps.Store.Close()
	defer s.limiter.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
