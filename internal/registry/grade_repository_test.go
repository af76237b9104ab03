package registry

import (
	"context"
	"errors"
	"testing"
)

func TestGradeRepositoryCreate(t *testing.T) {
	db := testDB(t)
	prof := seedTestUser(t, db, "usr-prof", "prof@example.edu", "faculty")
	student := seedTestUser(t, db, "usr-student", "student@example.edu", "student")
	course := seedTestCourse(t, db, "Calculus", prof)

	enrollments := NewEnrollmentRepository(db)
	if err := enrollments.Add(context.Background(), course.ID, student); err != nil {
		t.Fatalf("enrolling student: %v", err)
	}

	assignments := NewAssignmentRepository(db)
	assignment := &Assignment{CourseID: course.ID, Name: "Midterm"}
	if err := assignments.Create(context.Background(), assignment); err != nil {
		t.Fatalf("creating assignment: %v", err)
	}

	grades := NewGradeRepository(db)
	grade := &Grade{AssignmentID: assignment.ID, StudentID: student, Grade: "A-"}
	if err := grades.Create(context.Background(), grade); err != nil {
		t.Fatalf("creating grade: %v", err)
	}
	if grade.ID == "" {
		t.Error("expected generated ID")
	}

	recorded, err := grades.ListByStudent(context.Background(), student)
	if err != nil {
		t.Fatalf("listing grades: %v", err)
	}
	if len(recorded) != 1 || recorded[0].Grade != "A-" {
		t.Errorf("grades = %+v, want one A-", recorded)
	}
}

func TestGradeRepositoryCreateChecks(t *testing.T) {
	db := testDB(t)
	prof := seedTestUser(t, db, "usr-prof", "prof@example.edu", "faculty")
	enrolled := seedTestUser(t, db, "usr-enrolled", "enrolled@example.edu", "student")
	outsider := seedTestUser(t, db, "usr-outsider", "outsider@example.edu", "student")
	course := seedTestCourse(t, db, "Physics", prof)

	enrollments := NewEnrollmentRepository(db)
	if err := enrollments.Add(context.Background(), course.ID, enrolled); err != nil {
		t.Fatalf("enrolling student: %v", err)
	}

	assignments := NewAssignmentRepository(db)
	assignment := &Assignment{CourseID: course.ID, Name: "Lab 1"}
	if err := assignments.Create(context.Background(), assignment); err != nil {
		t.Fatalf("creating assignment: %v", err)
	}

	grades := NewGradeRepository(db)

	tests := []struct {
		name    string
		grade   *Grade
		wantErr error
	}{
		{"unknown assignment", &Grade{AssignmentID: "asn-missing", StudentID: enrolled, Grade: "B"}, ErrAssignmentNotFound},
		{"student not enrolled", &Grade{AssignmentID: assignment.ID, StudentID: outsider, Grade: "B"}, ErrNotEnrolled},
		{"invalid letter", &Grade{AssignmentID: assignment.ID, StudentID: enrolled, Grade: "E"}, ErrInvalidGrade},
		{"lowercase letter", &Grade{AssignmentID: assignment.ID, StudentID: enrolled, Grade: "a"}, ErrInvalidGrade},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := grades.Create(context.Background(), tt.grade); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create = %v, want %v", err, tt.wantErr)
			}
		})
	}

	recorded, err := grades.ListByAssignment(context.Background(), assignment.ID)
	if err != nil {
		t.Fatalf("listing grades: %v", err)
	}
	if len(recorded) != 0 {
		t.Errorf("grades after rejected creates = %d, want 0", len(recorded))
	}
}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db := testDB(t)
	prof := seedTestUser(t, db, "usr-prof", "prof@example.edu", "faculty")
	course := seedTestCourse(t, db, "Chemistry", prof)

	repo := NewAssignmentRepository(db)
	assignment := &Assignment{CourseID: course.ID, Name: "Problem Set 1"}
	if err := repo.Create(context.Background(), assignment); err != nil {
		t.Fatalf("creating assignment: %v", err)
	}

	got, err := repo.GetByID(context.Background(), assignment.ID)
	if err != nil {
		t.Fatalf("getting assignment: %v", err)
	}
	if got.Name != "Problem Set 1" || got.CourseID != course.ID {
		t.Errorf("got %+v, want Problem Set 1 in %s", got, course.ID)
	}

	listed, err := repo.ListByCourse(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("listing assignments: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("assignments = %d, want 1", len(listed))
	}
}

func TestAssignmentRepositoryCreateUnknownCourse(t *testing.T) {
	db := testDB(t)
	repo := NewAssignmentRepository(db)

	assignment := &Assignment{CourseID: "crs-missing", Name: "Orphan"}
	if err := repo.Create(context.Background(), assignment); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("Create = %v, want ErrCourseNotFound", err)
	}

	if _, err := repo.GetByID(context.Background(), "asn-missing"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("GetByID missing = %v, want ErrAssignmentNotFound", err)
	}
}
