package registry

import "time"

// Course is a taught unit owned by a faculty member.
type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ProfessorID string    `json:"professor_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Assignment is a gradeable piece of work within a course.
type Assignment struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Grade records a letter grade a student earned on an assignment.
type Grade struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	Grade        string    `json:"grade"`
	CreatedAt    time.Time `json:"created_at"`
}
