package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campusworks/registrar-core/internal/auth"
	"github.com/campusworks/registrar-core/internal/registry"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeUnprocessable writes a 422 error response.
func writeUnprocessable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps well-known auth and registry errors to their HTTP
// status and wire message. It reports whether the error was handled; the
// caller falls back to a 500 for anything unmapped.
//
// Error messages are part of the wire contract and pass through verbatim.
func writeDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, auth.ErrBadToken),
		errors.Is(err, auth.ErrBadCredentials):
		writeUnauthorized(w, err.Error())
	case errors.Is(err, auth.ErrNotPermitted):
		writeForbidden(w, err.Error())
	case errors.Is(err, auth.ErrEnrollmentTarget),
		errors.Is(err, auth.ErrEmailInvalid),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, registry.ErrProfessorNotFaculty),
		errors.Is(err, registry.ErrInvalidGrade),
		errors.Is(err, registry.ErrNotEnrolled):
		writeUnprocessable(w, err.Error())
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, registry.ErrUserNotFound),
		errors.Is(err, registry.ErrCourseNotFound),
		errors.Is(err, registry.ErrAssignmentNotFound),
		errors.Is(err, registry.ErrGradeNotFound):
		writeNotFound(w, err.Error())
	default:
		return false
	}
	return true
}
