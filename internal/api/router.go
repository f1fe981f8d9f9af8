package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Machine-facing endpoints (no auth: machines have no credentials)
		r.Post("/register", s.handleRegister)
		r.Post("/validate", s.handleValidate)

		// Admin console routes
		r.Route("/admin", func(r chi.Router) {
			// Login (no auth required)
			r.Post("/login", s.handleLogin)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)

				r.Get("/users", s.handleListUsers)
				r.Get("/requests", s.handleListRequests)
				r.Get("/stats", s.handleStats)
				r.Post("/action/{id}", s.handleAction)
				r.Delete("/user/{id}", s.handleDeleteUser)

				// WS ticket requires authentication - the admin must be logged
				// in to request a ticket
				r.Post("/ws-ticket", s.handleWSTicket)
			})
		})

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "degraded",
				"version": s.version,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
