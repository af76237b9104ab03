package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepositoryCreate(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	user := &User{
		Name:         "Alice Faculty",
		Email:        "alice@example.edu",
		PasswordHash: "hash",
		Role:         RoleFaculty,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	if user.ID == "" {
		t.Error("expected generated ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("getting user: %v", err)
	}
	if got.Email != "alice@example.edu" {
		t.Errorf("email = %q, want alice@example.edu", got.Email)
	}
	if got.Role != RoleFaculty {
		t.Errorf("role = %q, want faculty", got.Role)
	}
}

func TestUserRepositoryCreateInvalidEmail(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"no at sign", "aliceexample.edu"},
		{"no domain dot", "alice@example"},
		{"spaces", "alice smith@example.edu"},
		{"double at", "alice@@example.edu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Name: "Alice", Email: tt.email, PasswordHash: "hash", Role: RoleStudent}
			err := repo.Create(context.Background(), user)
			if !errors.Is(err, ErrEmailInvalid) {
				t.Errorf("Create(%q) = %v, want ErrEmailInvalid", tt.email, err)
			}
		})
	}
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	seedTestUser(t, db, "bob@example.edu", RoleStudent)

	dup := &User{Name: "Other Bob", Email: "bob@example.edu", PasswordHash: "hash", Role: RoleStudent}
	err := repo.Create(context.Background(), dup)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Create duplicate = %v, want ErrEmailExists", err)
	}
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	seeded := seedTestUser(t, db, "carol@example.edu", RoleAdmin)

	got, err := repo.GetByEmail(context.Background(), "carol@example.edu")
	if err != nil {
		t.Fatalf("getting user by email: %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("id = %q, want %q", got.ID, seeded.ID)
	}

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.edu"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown email = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryListByRole(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	seedTestUser(t, db, "s1@example.edu", RoleStudent)
	seedTestUser(t, db, "s2@example.edu", RoleStudent)
	seedTestUser(t, db, "f1@example.edu", RoleFaculty)

	students, err := repo.ListByRole(context.Background(), RoleStudent)
	if err != nil {
		t.Fatalf("listing students: %v", err)
	}
	if len(students) != 2 {
		t.Errorf("students = %d, want 2", len(students))
	}

	faculty, err := repo.ListByRole(context.Background(), RoleFaculty)
	if err != nil {
		t.Fatalf("listing faculty: %v", err)
	}
	if len(faculty) != 1 {
		t.Errorf("faculty = %d, want 1", len(faculty))
	}

	admins, err := repo.ListByRole(context.Background(), RoleAdmin)
	if err != nil {
		t.Fatalf("listing admins: %v", err)
	}
	if len(admins) != 0 {
		t.Errorf("admins = %d, want 0", len(admins))
	}
}

func TestUserRepositoryCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	seedTestUser(t, db, "one@example.edu", RoleStudent)
	seedTestUser(t, db, "two@example.edu", RoleFaculty)

	count, err = repo.Count(context.Background())
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.edu", true},
		{"a.b+tag@sub.example.com", true},
		{"", false},
		{"plainstring", false},
		{"@example.com", false},
		{"alice@", false},
		{"alice@example", false},
		{"alice @example.com", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
