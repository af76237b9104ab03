package auth

// Operation identifies a privileged action a caller may attempt.
type Operation string

// Privileged operations checked by the policy engine.
const (
	OpCreateUser              Operation = "user.create"
	OpCreateCourse            Operation = "course.create"
	OpUpdateCourse            Operation = "course.update"
	OpDeleteCourse            Operation = "course.delete"
	OpAddStudentToCourse      Operation = "course.roster.add"
	OpRemoveStudentFromCourse Operation = "course.roster.remove"
	OpCreateAssignment        Operation = "assignment.create"
	OpCreateAssignmentGrade   Operation = "grade.create"
)

// rule describes who may perform an operation and any constraint on the
// user the operation targets.
type rule struct {
	roles               map[Role]bool
	targetMustBeStudent bool
}

// policyTable is the single source of truth for authorization. Adding an
// operation means adding a row here, nothing else.
// Course and roster administration belongs to admins; assignments and
// grading belong to faculty. The two sets do not overlap.
var policyTable = map[Operation]rule{
	OpCreateUser:              {roles: map[Role]bool{RoleAdmin: true}},
	OpCreateCourse:            {roles: map[Role]bool{RoleAdmin: true}},
	OpUpdateCourse:            {roles: map[Role]bool{RoleAdmin: true}},
	OpDeleteCourse:            {roles: map[Role]bool{RoleAdmin: true}},
	OpAddStudentToCourse:      {roles: map[Role]bool{RoleAdmin: true}, targetMustBeStudent: true},
	OpRemoveStudentFromCourse: {roles: map[Role]bool{RoleAdmin: true}, targetMustBeStudent: true},
	OpCreateAssignment:        {roles: map[Role]bool{RoleFaculty: true}},
	OpCreateAssignmentGrade:   {roles: map[Role]bool{RoleFaculty: true}},
}

// PolicyEngine decides whether a caller may perform an operation,
// optionally against a target user.
type PolicyEngine struct{}

// NewPolicyEngine creates a policy engine.
func NewPolicyEngine() *PolicyEngine {
	return &PolicyEngine{}
}

// Authorize checks whether callerRole may perform op, optionally against
// target. The target constraint is checked before the caller's role: an
// enrollment aimed at a non-student fails with ErrEnrollmentTarget even
// when the caller could never have performed the operation anyway.
//
// Unknown operations are denied.
func (p *PolicyEngine) Authorize(callerRole Role, op Operation, target *User) error {
	r, ok := policyTable[op]
	if !ok {
		return ErrNotPermitted
	}

	if r.targetMustBeStudent {
		if target == nil || target.Role != RoleStudent {
			return ErrEnrollmentTarget
		}
	}

	if !r.roles[callerRole] {
		return ErrNotPermitted
	}

	return nil
}
