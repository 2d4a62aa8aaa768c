// Package api provides the HTTP server for Spikewise: device signup, sugar
// logging, action completion, and points history.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spikewise/spikewise/internal/app/tracker"
	"github.com/spikewise/spikewise/internal/health"
)

// Server is the Spikewise HTTP API server.
type Server struct {
	tracker        *tracker.Service
	checker        *health.Checker
	metricsEnabled bool
	now            func() time.Time
}

// NewServer creates a new API server.
func NewServer(t *tracker.Service, checker *health.Checker) *Server {
	return &Server{tracker: t, checker: checker, now: time.Now}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetClock overrides the request clock. Tests only.
func (s *Server) SetClock(now func() time.Time) { s.now = now }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleRegister)
		r.Get("/users/{deviceID}", s.handleGetUser)
		r.Get("/users/{deviceID}/points", s.handlePointsHistory)
		r.Post("/logs", s.handleCreateLog)
		r.Get("/logs/{deviceID}", s.handleListLogs)
		r.Post("/logs/{id}/complete", s.handleCompleteAction)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// corsMiddleware adds CORS headers for the mobile client and local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
