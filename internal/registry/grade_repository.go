package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GradeRepository defines persistence operations for grades.
type GradeRepository interface {
	// Create records a grade after verifying the assignment exists and
	// the student is enrolled in the assignment's course.
	Create(ctx context.Context, grade *Grade) error
	// ListByStudent retrieves all grades recorded for a student.
	ListByStudent(ctx context.Context, studentID string) ([]Grade, error)
	// ListByAssignment retrieves all grades recorded for an assignment.
	ListByAssignment(ctx context.Context, assignmentID string) ([]Grade, error)
}

// SQLiteGradeRepository implements GradeRepository using SQLite.
type SQLiteGradeRepository struct {
	db *sql.DB
}

// NewGradeRepository creates a new SQLite-backed grade repository.
func NewGradeRepository(db *sql.DB) *SQLiteGradeRepository {
	return &SQLiteGradeRepository{db: db}
}

// Create records a grade. Both relational checks, the assignment's
// existence and the student's enrollment in its course, run in the same
// transaction as the insert.
func (r *SQLiteGradeRepository) Create(ctx context.Context, grade *Grade) error {
	if !IsValidGrade(grade.Grade) {
		return ErrInvalidGrade
	}

	if grade.ID == "" {
		grade.ID = "grd-" + uuid.NewString()[:8]
	}
	grade.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var courseID string
	if err := tx.QueryRowContext(ctx,
		"SELECT course_id FROM assignments WHERE id = ?", grade.AssignmentID).Scan(&courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("checking assignment: %w", err)
	}

	var enrolled int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM enrollments WHERE course_id = ? AND student_id = ?",
		courseID, grade.StudentID,
	).Scan(&enrolled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("checking enrollment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO grades (id, assignment_id, student_id, grade, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		grade.ID, grade.AssignmentID, grade.StudentID, grade.Grade,
		grade.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing grade: %w", err)
	}
	return nil
}

// ListByStudent retrieves all grades recorded for a student ordered by
// creation date.
func (r *SQLiteGradeRepository) ListByStudent(ctx context.Context, studentID string) ([]Grade, error) {
	return r.listGrades(ctx,
		"SELECT id, assignment_id, student_id, grade, created_at FROM grades WHERE student_id = ? ORDER BY created_at ASC",
		studentID)
}

// ListByAssignment retrieves all grades recorded for an assignment
// ordered by creation date.
func (r *SQLiteGradeRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]Grade, error) {
	return r.listGrades(ctx,
		"SELECT id, assignment_id, student_id, grade, created_at FROM grades WHERE assignment_id = ? ORDER BY created_at ASC",
		assignmentID)
}

// listGrades executes a query and scans all grade results.
func (r *SQLiteGradeRepository) listGrades(ctx context.Context, query string, args ...any) ([]Grade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing grades: %w", err)
	}
	defer rows.Close()

	grades := []Grade{}
	for rows.Next() {
		var g Grade
		var createdAt string
		if err := rows.Scan(&g.ID, &g.AssignmentID, &g.StudentID, &g.Grade, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning grade: %w", err)
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating grades: %w", err)
	}
	return grades, nil
}
