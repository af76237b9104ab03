package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestSeedAdmin(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	password, err := SeedAdmin(context.Background(), repo, logger)
	if err != nil {
		t.Fatalf("seeding admin: %v", err)
	}
	if password == "" {
		t.Fatal("expected generated password")
	}

	admin, err := repo.GetByEmail(context.Background(), SeedAdminEmail)
	if err != nil {
		t.Fatalf("getting seeded admin: %v", err)
	}
	if admin.Role != RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}

	ok, err := VerifyPassword(password, admin.PasswordHash)
	if err != nil || !ok {
		t.Errorf("generated password does not verify: ok=%v err=%v", ok, err)
	}
}

func TestSeedAdminSkipsWhenUsersExist(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	seedTestUser(t, db, "existing@example.edu", RoleStudent)

	password, err := SeedAdmin(context.Background(), repo, logger)
	if err != nil {
		t.Fatalf("seeding admin: %v", err)
	}
	if password != "" {
		t.Errorf("expected empty password when users exist, got %q", password)
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
