package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/agentauth/internal/api/handler"
	mw "github.com/edvin/agentauth/internal/api/middleware"
	"github.com/edvin/agentauth/internal/config"
	"github.com/edvin/agentauth/internal/core"
)

// ReadinessCheck reports whether one backing dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	cfg         *config.Config
	auditLogger *mw.AuditLogger
	checks      map[string]ReadinessCheck
}

// NewServer builds the router. checks are run by /readyz, keyed by the name
// reported in its body.
func NewServer(logger zerolog.Logger, services *core.Services, auditLogger *mw.AuditLogger, cfg *config.Config, checks map[string]ReadinessCheck) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		cfg:         cfg,
		auditLogger: auditLogger,
		checks:      checks,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Key validation
		auth := handler.NewAuth(s.services.Authorizer, s.services.APIKey)
		r.Post("/auth/validate-api-key", auth.ValidateAPIKey)
		r.Post("/auth/check-permission", auth.CheckPermission)
		r.Post("/auth/parse-api-key", auth.ParseAPIKey)

		// Agent presence
		activity := handler.NewActivity(s.services.Presence)
		r.Put("/agent-activity", activity.Upsert)
		r.Get("/agent-activity", activity.List)

		// API key management
		r.Group(func(r chi.Router) {
			r.Use(mw.AdminToken(s.cfg.AdminToken))
			if s.auditLogger != nil {
				r.Use(s.auditLogger.Middleware)
			}

			apiKey := handler.NewAPIKey(s.services.APIKey)
			r.Get("/api-keys", apiKey.List)
			r.Post("/api-keys", apiKey.Create)
			r.Get("/api-keys/{id}", apiKey.Get)
			r.Put("/api-keys/{id}", apiKey.Update)
			r.Post("/api-keys/{id}/disable", apiKey.Disable)
			r.Delete("/api-keys/{id}", apiKey.Delete)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
