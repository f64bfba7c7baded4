// Package server is the composition root: it wires the database, the
// session table, the services, and the handlers into one chi router, and
// owns the process lifecycle (start, graceful shutdown, resource
// teardown).
//
// DEPENDENCY FLOW:
//
//	config → Server.New creates: sqlite.DB → services → handlers
//	                             session.Manager ──┘
//
// Everything is wired in New/setupRoutes, nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/sakif/codespace/internal/auth"
	"github.com/sakif/codespace/internal/config"
	"github.com/sakif/codespace/internal/feedback"
	"github.com/sakif/codespace/internal/handler"
	"github.com/sakif/codespace/internal/middleware"
	sqliteRepo "github.com/sakif/codespace/internal/repository/sqlite"
	"github.com/sakif/codespace/internal/service"
	"github.com/sakif/codespace/internal/session"
)

// Server owns the router and the long-lived resources (database
// connection, session table). Both are closed during shutdown.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	sessions *session.Manager
}

// New creates a Server: opens the database, initializes the session
// table, and wires all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		sessions: session.NewManager(cfg.SessionSecret),
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware, guards, and the route table.
//
// ROUTE TABLE:
//
//	POST   /login                            (open)
//	GET    /logout                           (open)
//	GET    /health                           (open)
//	GET    /check-admin                      (auth)
//	GET    /redirect-after-login             (auth)
//	POST   /analyze-code                     (auth)
//	POST   /save-code                        (auth)
//	GET    /get-saved-code                   (auth)
//	GET    /get-code/{id}                    (auth)
//	DELETE /delete-code/{id}                 (auth)
//	GET    /admin/dashboard-stats            (auth + admin)
//	GET    /admin/students                   (auth + admin)
//	GET    /admin/search-student?term=       (auth + admin)
//	GET    /admin/student-codes/{studentId}  (auth + admin)
//
// The guards short-circuit: a request failing RequireAuth never reaches
// RequireAdmin, and a request failing either never reaches its handler.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The browser client lives on its own origin and sends the session
	// cookie cross-origin, so credentials must be allowed and the origin
	// pinned to the configured frontend.
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{s.config.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler)

	// === WIRING ===
	analyzer := feedback.NewOllamaClient(s.config.OllamaURL, s.config.OllamaModel, s.logger)
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, s.sessions, passwords, s.logger)
	submissionService := service.NewSubmissionService(s.db, analyzer, s.logger)
	adminService := service.NewAdminService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.config.IsProduction(), s.logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, s.logger)
	adminHandler := handler.NewAdminHandler(adminService, s.logger)

	// === OPEN ROUTES ===
	s.router.Get("/health", handler.HandleHealth)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	// === AUTHENTICATED ROUTES ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.sessions))

		r.Get("/check-admin", authHandler.HandleCheckAdmin)
		r.Get("/redirect-after-login", authHandler.HandleRedirectAfterLogin)

		r.Post("/analyze-code", submissionHandler.HandleAnalyzeCode)
		r.Post("/save-code", submissionHandler.HandleSaveCode)
		r.Get("/get-saved-code", submissionHandler.HandleGetSavedCode)
		r.Get("/get-code/{id}", submissionHandler.HandleGetCode)
		r.Delete("/delete-code/{id}", submissionHandler.HandleDeleteCode)

		// === ADMIN ROUTES ===
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/dashboard-stats", adminHandler.HandleDashboardStats)
			r.Get("/students", adminHandler.HandleStudents)
			r.Get("/search-student", adminHandler.HandleSearchStudent)
			r.Get("/student-codes/{studentId}", adminHandler.HandleStudentCodes)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s),
// drop all sessions, close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.sessions.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		// Analyze requests block on the feedback service for up to 120s,
		// so the write timeout must sit above feedback.Timeout.
		WriteTimeout: feedback.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("env", s.config.Env),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
