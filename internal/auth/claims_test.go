package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndParseSessionToken(t *testing.T) {
	user := &User{ID: "usr-12345678", Role: RoleFaculty}
	expiresAt := time.Now().UTC().Add(time.Hour)

	token, err := SignSessionToken(user, "ses-abcdef01", testSecret, expiresAt)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	claims, err := ParseSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	if claims.Subject != "usr-12345678" {
		t.Errorf("subject = %q, want usr-12345678", claims.Subject)
	}
	if claims.Role != RoleFaculty {
		t.Errorf("role = %q, want faculty", claims.Role)
	}
	if claims.SessionID != "ses-abcdef01" {
		t.Errorf("sid = %q, want ses-abcdef01", claims.SessionID)
	}
}

func TestParseSessionTokenFailures(t *testing.T) {
	user := &User{ID: "usr-12345678", Role: RoleStudent}

	expired, err := SignSessionToken(user, "ses-expired1", testSecret, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}
	wrongKey, err := SignSessionToken(user, "ses-wrongkey", "some-other-secret-0123456789abcdefghij", time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("signing foreign token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "a.b.c"},
		{"expired", expired},
		{"wrong key", wrongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSessionToken(tt.token, testSecret); !errors.Is(err, ErrBadToken) {
				t.Errorf("ParseSessionToken = %v, want ErrBadToken", err)
			}
		})
	}
}
