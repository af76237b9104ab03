package auth

import (
	"context"
	"errors"
	"fmt"
)

// Authenticator verifies credentials and exchanges them for sessions.
type Authenticator struct {
	users    UserRepository
	sessions *SessionStore
}

// NewAuthenticator creates an authenticator backed by the given user
// repository and session store.
func NewAuthenticator(users UserRepository, sessions *SessionStore) *Authenticator {
	return &Authenticator{users: users, sessions: sessions}
}

// Login verifies the email and password and, on success, issues a new
// session token. An unknown email and a wrong password both return
// ErrBadCredentials; a failed login leaves no trace in the sessions table.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return "", nil, ErrBadCredentials
	}

	token, _, err := a.sessions.Issue(ctx, user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout revokes the session referenced by the token.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	return a.sessions.Revoke(ctx, token)
}
