package auth

import (
	"errors"
	"regexp"
	"time"
)

// emailPattern is a pragmatic syntax check: one @, no whitespace, a dot in
// the domain. Full RFC 5322 validation rejects addresses that real mail
// servers accept.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// maxEmailLength is the maximum allowed email length.
const maxEmailLength = 254

// IsValidEmail checks if an email address meets format requirements.
func IsValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleStudent can view records and appears on course rosters.
	// Students never mutate academic state.
	RoleStudent Role = "student"

	// RoleFaculty teaches courses: creates assignments and records grades
	// for courses they are responsible for.
	RoleFaculty Role = "faculty"

	// RoleAdmin manages the institution: accounts, courses, and rosters.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a user account may hold.
var ValidRoles = []Role{RoleStudent, RoleFaculty, RoleAdmin}

// IsValidRole returns true if the role is a valid role for a user account.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents an account in the academic records system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session represents an issued login session. The client-held token is a
// signed JWT whose sid claim references this row; revoking the row kills
// the token regardless of its signature lifetime.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

// Sentinel errors. The first five texts are the service's wire contract and
// must not be reworded: clients match on them literally.
var (
	ErrBadToken         = errors.New("Bad Token")
	ErrBadCredentials   = errors.New("Bad Login or Password")
	ErrNotPermitted     = errors.New("Operation Not Permitted")
	ErrEnrollmentTarget = errors.New("Only Students can be enrolled in Courses")
	ErrEmailInvalid     = errors.New("Validation error: Validation isEmail on email failed")
	ErrEmailExists      = errors.New("Validation error: email must be unique")
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("session not found")
)
