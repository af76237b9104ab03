package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusworks/registrar-core/internal/audit"
	"github.com/campusworks/registrar-core/internal/auth"
	"github.com/campusworks/registrar-core/internal/registry"
)

type createCourseRequest struct {
	Name        string `json:"name"`
	ProfessorID string `json:"professor_id"`
}

type updateCourseRequest struct {
	Name        *string `json:"name,omitempty"`
	ProfessorID *string `json:"professor_id,omitempty"`
}

// handleListCourses returns all courses.
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.courses.List(r.Context())
	if err != nil {
		s.logger.Error("list courses failed", "error", err)
		writeInternalError(w, "failed to list courses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"courses": courses,
		"count":   len(courses),
	})
}

// handleCreateCourse creates a new course. Admin only.
func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" || req.ProfessorID == "" {
		writeBadRequest(w, "name and professor_id are required")
		return
	}

	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpCreateCourse, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	course := &registry.Course{Name: req.Name, ProfessorID: req.ProfessorID}
	if err := s.courses.Create(r.Context(), course); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("create course failed", "error", err)
			writeInternalError(w, "failed to create course")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("course created", "course_id", course.ID, "name", course.Name, "created_by", claims.Subject)
	s.auditLog(audit.ActionCreate, audit.EntityCourse, course.ID, claims.Subject, map[string]any{
		"name":         course.Name,
		"professor_id": course.ProfessorID,
	})
	s.broadcast("course.created", course)

	writeJSON(w, http.StatusCreated, course)
}

// handleGetCourse returns a single course.
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.courses.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get course failed", "error", err)
			writeInternalError(w, "failed to load course")
		}
		return
	}

	writeJSON(w, http.StatusOK, course)
}

// handleUpdateCourse updates a course's name or professor. Admin only.
func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req updateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpUpdateCourse, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	course, err := s.courses.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get course failed", "error", err)
			writeInternalError(w, "failed to load course")
		}
		return
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.ProfessorID != nil {
		course.ProfessorID = *req.ProfessorID
	}

	if err := s.courses.Update(r.Context(), course); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("update course failed", "error", err)
			writeInternalError(w, "failed to update course")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog(audit.ActionUpdate, audit.EntityCourse, course.ID, claims.Subject, map[string]any{
		"name":         course.Name,
		"professor_id": course.ProfessorID,
	})
	s.broadcast("course.updated", course)

	writeJSON(w, http.StatusOK, course)
}

// handleDeleteCourse deletes a course. Admin only.
func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpDeleteCourse, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	courseID := chi.URLParam(r, "id")
	if err := s.courses.Delete(r.Context(), courseID); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("delete course failed", "error", err)
			writeInternalError(w, "failed to delete course")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog(audit.ActionDelete, audit.EntityCourse, courseID, claims.Subject, nil)
	s.broadcast("course.deleted", map[string]string{"course_id": courseID})

	writeJSON(w, http.StatusOK, map[string]any{"id": courseID})
}

// courseWithRoster is a course together with its enrolled students.
type courseWithRoster struct {
	*registry.Course
	Students []auth.User `json:"students"`
}

// loadRoster resolves a course's enrolled student ids to user records.
// Students deleted since enrolment are skipped.
func (s *Server) loadRoster(ctx context.Context, courseID string) ([]auth.User, error) {
	studentIDs, err := s.enrollments.ListStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}

	students := make([]auth.User, 0, len(studentIDs))
	for _, id := range studentIDs {
		student, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		students = append(students, *student)
	}
	return students, nil
}

// handleGetRoster returns the students enrolled in a course.
func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")

	if _, err := s.courses.GetByID(r.Context(), courseID); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get course failed", "error", err)
			writeInternalError(w, "failed to load course")
		}
		return
	}

	students, err := s.loadRoster(r.Context(), courseID)
	if err != nil {
		s.logger.Error("list roster failed", "course_id", courseID, "error", err)
		writeInternalError(w, "failed to load roster")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"course_id": courseID,
		"students":  students,
		"count":     len(students),
	})
}

// handleAddToRoster enrolls a student in a course. Admin only; the
// target must be a student.
func (s *Server) handleAddToRoster(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	studentID := chi.URLParam(r, "studentID")

	target, err := s.users.GetByID(r.Context(), studentID)
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		s.logger.Error("load enrollment target failed", "user_id", studentID, "error", err)
		writeInternalError(w, "failed to enroll student")
		return
	}

	// The target constraint outranks the caller's role: enrolling a
	// non-student is reported as such even when the caller could not
	// have enrolled anyone.
	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpAddStudentToCourse, target); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.enrollments.Add(r.Context(), courseID, studentID); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("add enrollment failed", "error", err)
			writeInternalError(w, "failed to enroll student")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog(audit.ActionEnroll, audit.EntityEnrollment, courseID+":"+studentID, claims.Subject, map[string]any{
		"course_id":  courseID,
		"student_id": studentID,
	})
	s.broadcast("roster.student_added", map[string]string{
		"course_id":  courseID,
		"student_id": studentID,
	})

	s.writeCourseWithRoster(w, r, courseID)
}

// writeCourseWithRoster responds with a course and its current roster.
func (s *Server) writeCourseWithRoster(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := s.courses.GetByID(r.Context(), courseID)
	if err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get course failed", "error", err)
			writeInternalError(w, "failed to load course")
		}
		return
	}

	students, err := s.loadRoster(r.Context(), courseID)
	if err != nil {
		s.logger.Error("list roster failed", "course_id", courseID, "error", err)
		writeInternalError(w, "failed to load roster")
		return
	}

	writeJSON(w, http.StatusOK, courseWithRoster{Course: course, Students: students})
}

// handleRemoveFromRoster drops a student from a course. Admin only.
func (s *Server) handleRemoveFromRoster(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	studentID := chi.URLParam(r, "studentID")

	target, err := s.users.GetByID(r.Context(), studentID)
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		s.logger.Error("load enrollment target failed", "user_id", studentID, "error", err)
		writeInternalError(w, "failed to drop student")
		return
	}

	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpRemoveStudentFromCourse, target); err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := s.courses.GetByID(r.Context(), courseID); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get course failed", "error", err)
			writeInternalError(w, "failed to drop student")
		}
		return
	}

	if err := s.enrollments.Remove(r.Context(), courseID, studentID); err != nil {
		s.logger.Error("remove enrollment failed", "error", err)
		writeInternalError(w, "failed to drop student")
		return
	}

	claims := claimsFromContext(r.Context())
	s.auditLog(audit.ActionDrop, audit.EntityEnrollment, courseID+":"+studentID, claims.Subject, map[string]any{
		"course_id":  courseID,
		"student_id": studentID,
	})
	s.broadcast("roster.student_removed", map[string]string{
		"course_id":  courseID,
		"student_id": studentID,
	})

	s.writeCourseWithRoster(w, r, courseID)
}
