package registry

// gradePoints maps letter grades to points on the standard 4.0 scale.
var gradePoints = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"D-": 0.7,
	"F":  0.0,
}

// IsValidGrade reports whether the letter grade is on the grading scale.
func IsValidGrade(letter string) bool {
	_, ok := gradePoints[letter]
	return ok
}

// GradePoints returns the point value of a letter grade. Unknown letters
// return 0 and false.
func GradePoints(letter string) (float64, bool) {
	points, ok := gradePoints[letter]
	return points, ok
}

// GPA computes the unweighted mean of the given grades' point values. A
// student with no grades has a GPA of 0.0. Letters not on the scale are
// skipped; the repository rejects them at write time, so they can only
// appear through out-of-band database edits.
func GPA(grades []Grade) float64 {
	var sum float64
	var count int
	for _, g := range grades {
		points, ok := gradePoints[g.Grade]
		if !ok {
			continue
		}
		sum += points
		count++
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}
