package registry

import "errors"

// Sentinel errors for registry operations.
var (
	// ErrCourseNotFound is returned when a course ID does not exist.
	ErrCourseNotFound = errors.New("course not found")

	// ErrProfessorNotFaculty is returned when a course references a
	// professor who does not hold the faculty role.
	ErrProfessorNotFaculty = errors.New("course professor must be a faculty member")

	// ErrAssignmentNotFound is returned when an assignment ID does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrGradeNotFound is returned when a grade ID does not exist.
	ErrGradeNotFound = errors.New("grade not found")

	// ErrNotEnrolled is returned when a grade targets a student who is
	// not enrolled in the assignment's course.
	ErrNotEnrolled = errors.New("student is not enrolled in the assignment's course")

	// ErrInvalidGrade is returned when a letter grade is not on the
	// grading scale.
	ErrInvalidGrade = errors.New("invalid letter grade")

	// ErrUserNotFound is returned when a referenced user ID does not exist.
	ErrUserNotFound = errors.New("user not found")
)
