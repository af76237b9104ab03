package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/registrar-core/internal/auth"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	// Create inserts a new course after verifying the professor holds
	// the faculty role.
	Create(ctx context.Context, course *Course) error
	// GetByID retrieves a course by ID.
	GetByID(ctx context.Context, id string) (*Course, error)
	// List retrieves all courses.
	List(ctx context.Context) ([]Course, error)
	// ListByProfessor retrieves all courses taught by a professor.
	ListByProfessor(ctx context.Context, professorID string) ([]Course, error)
	// ListByStudent retrieves all courses a student is enrolled in.
	ListByStudent(ctx context.Context, studentID string) ([]Course, error)
	// Update modifies an existing course.
	Update(ctx context.Context, course *Course) error
	// Delete removes a course and, via cascade, its enrollments,
	// assignments, and grades.
	Delete(ctx context.Context, id string) error
}

// SQLiteCourseRepository implements CourseRepository using SQLite.
type SQLiteCourseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new SQLite-backed course repository.
func NewCourseRepository(db *sql.DB) *SQLiteCourseRepository {
	return &SQLiteCourseRepository{db: db}
}

// Create inserts a new course. The professor's role is checked in the
// same transaction as the insert so a concurrent role change cannot slip
// a non-faculty professor in.
func (r *SQLiteCourseRepository) Create(ctx context.Context, course *Course) error {
	if course.ID == "" {
		course.ID = "crs-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := checkProfessorIsFaculty(ctx, tx, course.ProfessorID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO courses (id, name, professor_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		course.ID, course.Name, course.ProfessorID,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing course: %w", err)
	}
	return nil
}

// GetByID retrieves a course by ID.
func (r *SQLiteCourseRepository) GetByID(ctx context.Context, id string) (*Course, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, professor_id, created_at, updated_at FROM courses WHERE id = ?", id)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("querying course: %w", err)
	}
	return course, nil
}

// List retrieves all courses ordered by creation date.
func (r *SQLiteCourseRepository) List(ctx context.Context) ([]Course, error) {
	return r.listCourses(ctx,
		"SELECT id, name, professor_id, created_at, updated_at FROM courses ORDER BY created_at ASC")
}

// ListByProfessor retrieves all courses taught by a professor.
func (r *SQLiteCourseRepository) ListByProfessor(ctx context.Context, professorID string) ([]Course, error) {
	return r.listCourses(ctx,
		"SELECT id, name, professor_id, created_at, updated_at FROM courses WHERE professor_id = ? ORDER BY created_at ASC",
		professorID)
}

// ListByStudent retrieves all courses a student is enrolled in.
func (r *SQLiteCourseRepository) ListByStudent(ctx context.Context, studentID string) ([]Course, error) {
	return r.listCourses(ctx,
		`SELECT c.id, c.name, c.professor_id, c.created_at, c.updated_at
		 FROM courses c
		 JOIN enrollments e ON e.course_id = c.id
		 WHERE e.student_id = ?
		 ORDER BY c.created_at ASC`,
		studentID)
}

// Update modifies a course's name and professor. The professor role check
// runs in the same transaction as the update.
func (r *SQLiteCourseRepository) Update(ctx context.Context, course *Course) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := checkProfessorIsFaculty(ctx, tx, course.ProfessorID); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		"UPDATE courses SET name = ?, professor_id = ?, updated_at = ? WHERE id = ?",
		course.Name, course.ProfessorID, now.Format(time.RFC3339), course.ID,
	)
	if err != nil {
		return fmt.Errorf("updating course: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if affected == 0 {
		return ErrCourseNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing course update: %w", err)
	}

	course.UpdatedAt = now
	return nil
}

// Delete removes a course by ID. Enrollments, assignments, and grades
// cascade at the schema level.
func (r *SQLiteCourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion: %w", err)
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// listCourses executes a query and scans all course results.
func (r *SQLiteCourseRepository) listCourses(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	courses := []Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}
	return courses, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanCourse scans a course from a row or rows cursor.
func scanCourse(s scanner) (*Course, error) {
	var c Course
	var createdAt, updatedAt string

	if err := s.Scan(&c.ID, &c.Name, &c.ProfessorID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &c, nil
}

// checkProfessorIsFaculty verifies, inside the caller's transaction, that
// the referenced user exists and holds the faculty role.
func checkProfessorIsFaculty(ctx context.Context, tx *sql.Tx, professorID string) error {
	var role string
	err := tx.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id = ?", professorID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("checking professor role: %w", err)
	}

	if auth.Role(role) != auth.RoleFaculty {
		return ErrProfessorNotFaculty
	}
	return nil
}
