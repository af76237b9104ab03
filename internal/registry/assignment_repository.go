package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	// Create inserts a new assignment after verifying its course exists.
	Create(ctx context.Context, assignment *Assignment) error
	// GetByID retrieves an assignment by ID.
	GetByID(ctx context.Context, id string) (*Assignment, error)
	// ListByCourse retrieves all assignments for a course.
	ListByCourse(ctx context.Context, courseID string) ([]Assignment, error)
}

// SQLiteAssignmentRepository implements AssignmentRepository using SQLite.
type SQLiteAssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new SQLite-backed assignment repository.
func NewAssignmentRepository(db *sql.DB) *SQLiteAssignmentRepository {
	return &SQLiteAssignmentRepository{db: db}
}

// Create inserts a new assignment. The course existence check runs in the
// same transaction as the insert.
func (r *SQLiteAssignmentRepository) Create(ctx context.Context, assignment *Assignment) error {
	if assignment.ID == "" {
		assignment.ID = "asn-" + uuid.NewString()[:8]
	}
	assignment.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM courses WHERE id = ?", assignment.CourseID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("checking course: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (id, course_id, name, created_at)
		 VALUES (?, ?, ?, ?)`,
		assignment.ID, assignment.CourseID, assignment.Name,
		assignment.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assignment: %w", err)
	}
	return nil
}

// GetByID retrieves an assignment by ID.
func (r *SQLiteAssignmentRepository) GetByID(ctx context.Context, id string) (*Assignment, error) {
	var a Assignment
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, course_id, name, created_at FROM assignments WHERE id = ?", id,
	).Scan(&a.ID, &a.CourseID, &a.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("querying assignment: %w", err)
	}

	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &a, nil
}

// ListByCourse retrieves all assignments for a course ordered by creation date.
func (r *SQLiteAssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, course_id, name, created_at FROM assignments WHERE course_id = ? ORDER BY created_at ASC",
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	assignments := []Assignment{}
	for rows.Next() {
		var a Assignment
		var createdAt string
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	return assignments, nil
}
