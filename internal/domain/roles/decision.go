package roles

import "fmt"

// TransitionResult is the read-only answer to "may actor do action to target".
type TransitionResult struct {
	Allowed       bool   `json:"allowed"`
	ResultingRole Role   `json:"resultingRole,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Evaluate decides action for actor on target and returns the role the
// target holds afterwards. newRole is optional; when set it must be the single
// legal destination. The last SUPER_ADMIN guard needs persisted state and is
// enforced by the caller.
func Evaluate(actor, target Subject, action Action, newRole Role) (Role, error) {
	if !actor.Role.Valid() {
		return "", ErrInsufficientPermissions
	}

	switch action {
	case ActionPromote:
		next, ok := Next(target.Role)
		if !ok {
			return "", ErrCannotPromoteFurther
		}
		if !CanPerformAction(actor.Role, target.Role, ActionPromote) {
			return "", ErrInsufficientPermissions
		}
		if newRole != "" && newRole != next {
			return "", fmt.Errorf("%w: %s can only be promoted to %s", ErrInvalidTransition, target.Role, next)
		}
		if !CanPromote(actor.Role, target.Role, next) {
			return "", ErrInsufficientPermissions
		}
		return next, nil

	case ActionDemote:
		prev, ok := Previous(target.Role)
		if !ok {
			return "", ErrCannotDemoteFurther
		}
		if !CanPerformAction(actor.Role, target.Role, ActionDemote) {
			return "", ErrInsufficientPermissions
		}
		if newRole != "" && newRole != prev {
			return "", fmt.Errorf("%w: %s can only be demoted to %s", ErrInvalidTransition, target.Role, prev)
		}
		return prev, nil

	case ActionTransferSuperAdmin:
		if !CanPerformAction(actor.Role, target.Role, ActionTransferSuperAdmin) {
			return "", ErrInsufficientPermissions
		}
		if newRole != "" && newRole != SuperAdmin {
			return "", ErrInvalidTransition
		}
		return SuperAdmin, nil

	case ActionAssignProject, ActionAssignTask, ActionManageTeam:
		if err := AuthorizeDelegated(actor, target, action); err != nil {
			return "", err
		}
		return target.Role, nil
	}

	return "", fmt.Errorf("%w: unknown action %q", ErrInsufficientPermissions, action)
}

// EvaluateChange resolves an explicit destination role into the ladder action
// that reaches it. A SUPER_ADMIN may be moved to any lower role by another
// SUPER_ADMIN; the holder count guard still applies.
func EvaluateChange(actor, target Subject, newRole Role) (Action, Role, error) {
	if !newRole.Valid() || !target.Role.Valid() {
		return "", "", ErrInvalidTransition
	}
	if newRole == target.Role {
		return "", "", fmt.Errorf("%w: target already holds %s", ErrInvalidTransition, newRole)
	}

	if newRole.Rank() > target.Role.Rank() {
		resulting, err := Evaluate(actor, target, ActionPromote, newRole)
		return ActionPromote, resulting, err
	}

	if target.Role == SuperAdmin {
		if actor.Role != SuperAdmin {
			return "", "", ErrInsufficientPermissions
		}
		return ActionDemote, newRole, nil
	}

	resulting, err := Evaluate(actor, target, ActionDemote, newRole)
	return ActionDemote, resulting, err
}

func Check(actor, target Subject, action Action, newRole Role) TransitionResult {
	resulting, err := Evaluate(actor, target, action, newRole)
	if err != nil {
		return TransitionResult{Allowed: false, Reason: err.Error()}
	}
	return TransitionResult{Allowed: true, ResultingRole: resulting}
}
