package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusworks/registrar-core/internal/audit"
	"github.com/campusworks/registrar-core/internal/auth"
	"github.com/campusworks/registrar-core/internal/registry"
)

type createUserRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

// userResponse is a user with the relations a client usually wants next:
// the courses a student is enrolled in, or the courses a faculty member
// teaches, plus a student's GPA.
type userResponse struct {
	*auth.User
	Courses []registry.Course `json:"courses,omitempty"`
	GPA     *float64          `json:"gpa,omitempty"`
}

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleListStudents returns all student accounts.
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	s.listByRole(w, r, auth.RoleStudent, "students")
}

// handleListFaculty returns all faculty accounts.
func (s *Server) handleListFaculty(w http.ResponseWriter, r *http.Request) {
	s.listByRole(w, r, auth.RoleFaculty, "faculty")
}

func (s *Server) listByRole(w http.ResponseWriter, r *http.Request, role auth.Role, key string) {
	users, err := s.users.ListByRole(r.Context(), role)
	if err != nil {
		s.logger.Error("list users by role failed", "role", role, "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	resps := make([]userResponse, 0, len(users))
	for i := range users {
		resp, err := s.userWithRelations(r.Context(), &users[i])
		if err != nil {
			s.logger.Error("load user relations failed", "user_id", users[i].ID, "error", err)
			writeInternalError(w, "failed to list users")
			return
		}
		resps = append(resps, resp)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		key:     resps,
		"count": len(resps),
	})
}

// userWithRelations attaches the course relations for a user: enrolled
// courses and GPA for a student, taught courses for a faculty member.
func (s *Server) userWithRelations(ctx context.Context, user *auth.User) (userResponse, error) {
	resp := userResponse{User: user}

	switch user.Role {
	case auth.RoleStudent:
		courses, err := s.courses.ListByStudent(ctx, user.ID)
		if err != nil {
			return resp, err
		}
		resp.Courses = courses

		grades, err := s.grades.ListByStudent(ctx, user.ID)
		if err != nil {
			return resp, err
		}
		gpa := registry.GPA(grades)
		resp.GPA = &gpa

	case auth.RoleFaculty:
		courses, err := s.courses.ListByProfessor(ctx, user.ID)
		if err != nil {
			return resp, err
		}
		resp.Courses = courses

	case auth.RoleAdmin:
		// Admins carry no course relations.
	}

	return resp, nil
}

// handleCreateUser creates a new user account. Admin only.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" || req.Password == "" {
		writeBadRequest(w, "name and password are required")
		return
	}

	if len(req.Password) < 8 { //nolint:mnd // minimum password length
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}

	if req.Role == "" {
		req.Role = auth.RoleStudent
	}
	if !auth.IsValidRole(req.Role) {
		writeBadRequest(w, "invalid role: must be student, faculty, or admin")
		return
	}

	if err := s.policy.Authorize(callerRole(r.Context()), auth.OpCreateUser, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	user := &auth.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("create user failed", "error", err)
			writeInternalError(w, "failed to create user")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("user created", "user_id", user.ID, "email", user.Email, "role", user.Role, "created_by", claims.Subject)
	s.auditLog(audit.ActionCreate, audit.EntityUser, user.ID, claims.Subject, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})

	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser returns a single user with their course relations. A
// student's response includes enrolled courses and GPA; a faculty
// member's includes the courses they teach.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get user failed", "error", err)
			writeInternalError(w, "failed to load user")
		}
		return
	}

	resp, err := s.userWithRelations(r.Context(), user)
	if err != nil {
		s.logger.Error("load user relations failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetUserGPA returns a student's grade point average.
func (s *Server) handleGetUserGPA(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !writeDomainError(w, err) {
			s.logger.Error("get user failed", "error", err)
			writeInternalError(w, "failed to load user")
		}
		return
	}

	if user.Role != auth.RoleStudent {
		writeUnprocessable(w, "GPA is only defined for students")
		return
	}

	grades, err := s.grades.ListByStudent(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list student grades failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to compute GPA")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     user.ID,
		"gpa":         registry.GPA(grades),
		"grade_count": len(grades),
	})
}
