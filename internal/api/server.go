package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/crag-collective/logbook-engine/internal/config"
	"github.com/crag-collective/logbook-engine/internal/grades"
	"github.com/crag-collective/logbook-engine/internal/logbook"
	"github.com/crag-collective/logbook-engine/internal/models"
	"github.com/crag-collective/logbook-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	logbook        logbook.Manager
	gradeCatalog   *grades.Catalog
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	manager logbook.Manager,
	catalog *grades.Catalog,
	repo storage.Repository,
) *Server {
	s := &Server{
		config:         cfg,
		logbook:        manager,
		gradeCatalog:   catalog,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply authentication middleware to all /api/v1/* routes
		r.Use(s.authMiddleware.Authenticate)

		// Ascents
		r.Route("/ascents", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission(models.PermAscentsRead)).Get("/", s.handleListAscents)
			r.With(s.authMiddleware.RequirePermission(models.PermAscentsWrite)).Post("/", s.handleCreateAscent)

			r.Route("/{id}", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission(models.PermAscentsRead)).Get("/", s.handleGetAscent)
				r.With(s.authMiddleware.RequirePermission(models.PermAscentsWrite)).Put("/", s.handleUpdateAscent)
				r.With(s.authMiddleware.RequirePermission(models.PermAscentsWrite)).Delete("/", s.handleDeleteAscent)
			})
		})

		// Climbing sessions (derived, read-only)
		r.Route("/climbing_sessions", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission(models.PermSessionsRead)).Get("/", s.handleListSessions)
			r.With(s.authMiddleware.RequirePermission(models.PermSessionsRead)).Get("/{id}", s.handleGetSession)
		})

		// Statistics
		r.With(s.authMiddleware.RequirePermission(models.PermStatsRead)).Get("/figures", s.handleFigures)

		// Guidebook reads
		r.Route("/routes", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission(models.PermRoutesRead)).Get("/", s.handleListRoutes)
			r.With(s.authMiddleware.RequirePermission(models.PermRoutesRead)).Get("/{id}", s.handleGetRoute)
		})
		r.With(s.authMiddleware.RequirePermission(models.PermRoutesRead)).Get("/crags/{id}", s.handleGetCrag)

		// Grading systems
		r.Route("/grade_systems", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission(models.PermRoutesRead)).Get("/", s.handleListGradeSystems)
			r.With(s.authMiddleware.RequirePermission(models.PermRoutesRead)).Get("/{name}", s.handleGetGradeSystem)
		})

		// Tick list
		r.Route("/ticks", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission(models.PermTicksRead)).Get("/", s.handleListTicks)
			r.With(s.authMiddleware.RequirePermission(models.PermTicksWrite)).Post("/", s.handleCreateTick)
			r.With(s.authMiddleware.RequirePermission(models.PermTicksWrite)).Delete("/{id}", s.handleDeleteTick)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
