// Package registry manages the academic domain records: courses,
// enrollments, assignments, and grades.
//
// Every relational invariant is enforced inside the repository that owns
// the write, in the same transaction as the write itself:
//
//   - a course's professor must hold the faculty role
//   - only students can be enrolled in courses
//   - an assignment must belong to an existing course
//   - a grade requires an existing assignment and a student enrolled in
//     that assignment's course
//
// Callers (the HTTP layer, the policy engine) may check some of these
// earlier for better error messages, but the repositories never trust
// them to have done so.
//
// The package also computes grade point averages from recorded letter
// grades on the standard 4.0 scale.
package registry
