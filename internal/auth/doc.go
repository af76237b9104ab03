// Package auth provides authentication and authorisation for Registrar Core.
//
// It implements a 3-role model (student → faculty → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Signed session tokens with server-side revocation (logout kills the
//     token immediately, no matter how much lifetime the signature has left)
//   - A single declarative policy table mapping each mutating operation to
//     the role allowed to perform it, plus an optional target-role predicate
//     for roster changes
//
// The policy table is the single source of truth for authorisation: no
// handler carries its own role check. Roster operations additionally
// require the target user to hold the student role, and that check is
// evaluated before the caller's own role — a faculty caller enrolling
// another faculty member is told about the invalid target, not about
// their missing permission.
package auth
