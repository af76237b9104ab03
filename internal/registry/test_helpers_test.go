package registry

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/campusworks/registrar-core/internal/auth"
)

// testDB creates a temporary SQLite database with the registry schema and
// its user table prerequisite applied. The database file is cleaned up
// when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "registry-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE courses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			professor_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (professor_id) REFERENCES users(id)
		) STRICT;

		CREATE TABLE enrollments (
			course_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (course_id, student_id),
			FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
			FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE assignments (
			id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE grades (
			id TEXT PRIMARY KEY,
			assignment_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			grade TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (assignment_id) REFERENCES assignments(id) ON DELETE CASCADE,
			FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying registry schema: %v", err)
	}

	return db
}

// seedTestUser inserts a user row directly and returns its ID.
func seedTestUser(t *testing.T, db *sql.DB, id, email string, role auth.Role) string {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, 'hash', ?, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`,
		id, email, email, string(role),
	)
	if err != nil {
		t.Fatalf("seeding test user %s: %v", email, err)
	}
	return id
}

// seedTestCourse inserts a course taught by the given faculty member.
func seedTestCourse(t *testing.T, db *sql.DB, name, professorID string) *Course {
	t.Helper()

	repo := NewCourseRepository(db)
	course := &Course{Name: name, ProfessorID: professorID}
	if err := repo.Create(context.Background(), course); err != nil {
		t.Fatalf("seeding test course %s: %v", name, err)
	}
	return course
}
