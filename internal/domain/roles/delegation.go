package roles

import "fmt"

// Subject is an actor or target as seen by the decision functions.
type Subject struct {
	ID           string
	Role         Role
	DepartmentID string
}

// AuthorizeDelegated checks assign_project, assign_task and manage_team.
// Managers are confined to their own department. Admins are unscoped but, as
// in CanPerformAction, may not direct a SUPER_ADMIN. A target without a role
// is a resource (task, project, team) and is judged on department only.
func AuthorizeDelegated(actor, target Subject, action Action) error {
	if !action.Delegated() {
		return fmt.Errorf("%w: %s is not a delegated action", ErrInsufficientPermissions, action)
	}

	switch actor.Role {
	case SuperAdmin:
		return nil
	case Admin:
		if target.Role == SuperAdmin {
			return fmt.Errorf("%w: admins cannot %s for a super admin", ErrInsufficientPermissions, action)
		}
		return nil
	case Manager:
		if actor.DepartmentID == "" || actor.DepartmentID != target.DepartmentID {
			return ErrScopeViolation
		}
		return nil
	}
	return ErrInsufficientPermissions
}
