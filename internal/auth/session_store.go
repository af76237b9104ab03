package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SessionStore issues, validates, and revokes session tokens.
//
// A session token is a signed JWT whose "sid" claim references a sessions
// table row. The signature proves the token was issued by this server; the
// database row makes it revocable. Validate checks both, so a logged-out
// token fails even before its expiry.
type SessionStore struct {
	sessions SessionRepository
	secret   string
	ttl      time.Duration
}

// NewSessionStore creates a session store. The secret signs all issued
// tokens; ttl bounds how long each session lives.
func NewSessionStore(sessions SessionRepository, secret string, ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: sessions, secret: secret, ttl: ttl}
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Issue creates a new session for the user and returns the signed token.
// Multiple concurrent sessions per user are permitted; each login issues
// a fresh session row.
func (s *SessionStore) Issue(ctx context.Context, user *User) (string, *Session, error) {
	now := time.Now().UTC()
	session := &Session{
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("issuing session: %w", err)
	}

	token, err := SignSessionToken(user, session.ID, s.secret, session.ExpiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("signing session token: %w", err)
	}

	return token, session, nil
}

// Validate parses the token, verifies its signature, and checks the
// referenced session is still active. Every failure collapses to
// ErrBadToken; callers get no hint whether the token was malformed,
// expired, revoked, or forged.
func (s *SessionStore) Validate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrBadToken
	}

	claims, err := ParseSessionToken(token, s.secret)
	if err != nil {
		return nil, ErrBadToken
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrBadToken
		}
		return nil, fmt.Errorf("validating session: %w", err)
	}

	if !session.Active(time.Now().UTC()) {
		return nil, ErrBadToken
	}

	return claims, nil
}

// Revoke validates the token and marks its session as revoked. Subsequent
// Validate calls with the same token return ErrBadToken.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	claims, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrBadToken
		}
		return fmt.Errorf("revoking session: %w", err)
	}

	return nil
}
