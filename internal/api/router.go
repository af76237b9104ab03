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

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)

			// WS ticket requires authentication - user must be logged in
			// to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// User endpoints
			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/students", s.handleListStudents)
				r.Get("/faculty", s.handleListFaculty)
				r.Get("/{id}", s.handleGetUser)
				r.Get("/{id}/gpa", s.handleGetUserGPA)
			})

			// Course endpoints
			r.Route("/courses", func(r chi.Router) {
				r.Get("/", s.handleListCourses)
				r.Post("/", s.handleCreateCourse)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetCourse)
					r.Patch("/", s.handleUpdateCourse)
					r.Delete("/", s.handleDeleteCourse)

					r.Get("/roster", s.handleGetRoster)
					r.Put("/roster/{studentID}", s.handleAddToRoster)
					r.Delete("/roster/{studentID}", s.handleRemoveFromRoster)

					r.Get("/assignments", s.handleListAssignments)
					r.Post("/assignments", s.handleCreateAssignment)
				})
			})

			// Assignment endpoints
			r.Route("/assignments/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAssignment)
				r.Get("/grades", s.handleListAssignmentGrades)
				r.Post("/grades", s.handleCreateGrade)
			})

			// Audit trail
			r.Get("/audit", s.handleListAuditLogs)

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
