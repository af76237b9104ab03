package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/registrar-core/internal/auth"
)

// EnrollmentRepository defines persistence operations for course rosters.
type EnrollmentRepository interface {
	// Add enrolls a student in a course. Adding an existing enrollment
	// is a no-op.
	Add(ctx context.Context, courseID, studentID string) error
	// Remove drops a student from a course. Removing a missing
	// enrollment is a no-op.
	Remove(ctx context.Context, courseID, studentID string) error
	// ListStudents retrieves the student IDs enrolled in a course.
	ListStudents(ctx context.Context, courseID string) ([]string, error)
	// IsEnrolled reports whether a student is enrolled in a course.
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

// SQLiteEnrollmentRepository implements EnrollmentRepository using SQLite.
type SQLiteEnrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new SQLite-backed enrollment repository.
func NewEnrollmentRepository(db *sql.DB) *SQLiteEnrollmentRepository {
	return &SQLiteEnrollmentRepository{db: db}
}

// Add enrolls a student in a course. The course's existence and the
// target's student role are verified in the same transaction as the
// insert; the policy engine checks the role earlier, but the repository
// does not trust callers to have gone through it. Re-adding an existing
// enrollment succeeds without duplicating the row.
func (r *SQLiteEnrollmentRepository) Add(ctx context.Context, courseID, studentID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM courses WHERE id = ?", courseID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("checking course: %w", err)
	}

	var role string
	if err := tx.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id = ?", studentID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("checking student role: %w", err)
	}
	if auth.Role(role) != auth.RoleStudent {
		return auth.ErrEnrollmentTarget
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO enrollments (course_id, student_id, created_at)
		 VALUES (?, ?, ?)`,
		courseID, studentID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing enrollment: %w", err)
	}
	return nil
}

// Remove drops a student from a course. Removing an enrollment that does
// not exist succeeds silently; the end state is the same either way.
func (r *SQLiteEnrollmentRepository) Remove(ctx context.Context, courseID, studentID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM enrollments WHERE course_id = ? AND student_id = ?",
		courseID, studentID,
	)
	if err != nil {
		return fmt.Errorf("removing enrollment: %w", err)
	}
	return nil
}

// ListStudents retrieves the IDs of students enrolled in a course,
// ordered by enrollment date.
func (r *SQLiteEnrollmentRepository) ListStudents(ctx context.Context, courseID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT student_id FROM enrollments WHERE course_id = ? ORDER BY created_at ASC",
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning enrollment: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enrollments: %w", err)
	}
	return ids, nil
}

// IsEnrolled reports whether a student is enrolled in a course.
func (r *SQLiteEnrollmentRepository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM enrollments WHERE course_id = ? AND student_id = ?",
		courseID, studentID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking enrollment: %w", err)
	}
	return true, nil
}
