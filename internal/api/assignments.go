package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusworks/registrar-core/internal/audit"
	"github.com/campusworks/registrar-core/internal/auth"
	"github.com/campusworks/registrar-core/internal/registry"
)

type createAssignmentRequest struct {
	Name string `json:"name"`
}

type createGradeRequest struct {
	StudentID string `json:"student_id"`
	Grade     string `json:"grade"`
}

// handleListAssignments returns all assignments for a course.
func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")

	if _, err := s.courses.GetByID(r.Context(), courseID); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get course failed", "error", err)
			writeInternalError(w, "failed to load course")
		}
		return
	}

	assignments, err := s.assignments.ListByCourse(r.Context(), courseID)
	if err != nil {
		s.logger.Error("list assignments failed", "course_id", courseID, "error", err)
		writeInternalError(w, "failed to list assignments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

// handleCreateAssignment creates an assignment in a course. Faculty only.
func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpCreateAssignment, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	assignment := &registry.Assignment{
		CourseID: chi.URLParam(r, "id"),
		Name:     req.Name,
	}
	if err := s.assignments.Create(r.Context(), assignment); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("create assignment failed", "error", err)
			writeInternalError(w, "failed to create assignment")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog(audit.ActionCreate, audit.EntityAssignment, assignment.ID, claims.Subject, map[string]any{
		"course_id": assignment.CourseID,
		"name":      assignment.Name,
	})
	s.broadcast("assignment.created", assignment)

	writeJSON(w, http.StatusCreated, assignment)
}

// handleGetAssignment returns a single assignment.
func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := s.assignments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get assignment failed", "error", err)
			writeInternalError(w, "failed to load assignment")
		}
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// handleListAssignmentGrades returns all grades recorded for an assignment.
func (s *Server) handleListAssignmentGrades(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")

	if _, err := s.assignments.GetByID(r.Context(), assignmentID); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get assignment failed", "error", err)
			writeInternalError(w, "failed to load assignment")
		}
		return
	}

	grades, err := s.grades.ListByAssignment(r.Context(), assignmentID)
	if err != nil {
		s.logger.Error("list grades failed", "assignment_id", assignmentID, "error", err)
		writeInternalError(w, "failed to list grades")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"grades": grades,
		"count":  len(grades),
	})
}

// handleCreateGrade records a grade for a student on an assignment.
// Faculty only; the student must be enrolled in the assignment's course.
func (s *Server) handleCreateGrade(w http.ResponseWriter, r *http.Request) {
	var req createGradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.StudentID == "" || req.Grade == "" {
		writeBadRequest(w, "student_id and grade are required")
		return
	}

	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpCreateAssignmentGrade, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	grade := &registry.Grade{
		AssignmentID: chi.URLParam(r, "id"),
		StudentID:    req.StudentID,
		Grade:        req.Grade,
	}
	if err := s.grades.Create(r.Context(), grade); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("create grade failed", "error", err)
			writeInternalError(w, "failed to record grade")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog(audit.ActionGrade, audit.EntityGrade, grade.ID, claims.Subject, map[string]any{
		"assignment_id": grade.AssignmentID,
		"student_id":    grade.StudentID,
		"grade":         grade.Grade,
	})
	s.broadcast("grade.recorded", grade)

	writeJSON(w, http.StatusCreated, grade)
}
