package roles

import "strings"

type Action string

const (
	ActionPromote            Action = "promote"
	ActionDemote             Action = "demote"
	ActionTransferSuperAdmin Action = "transfer_super_admin"
	ActionAssignProject      Action = "assign_project"
	ActionAssignTask         Action = "assign_task"
	ActionManageTeam         Action = "manage_team"
)

var actions = []Action{
	ActionPromote,
	ActionDemote,
	ActionTransferSuperAdmin,
	ActionAssignProject,
	ActionAssignTask,
	ActionManageTeam,
}

func ParseAction(raw string) (Action, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range actions {
		if string(a) == key {
			return a, true
		}
	}
	return "", false
}

// Delegated reports whether a is a non-promotion action gated by role and
// department scope.
func (a Action) Delegated() bool {
	switch a {
	case ActionAssignProject, ActionAssignTask, ActionManageTeam:
		return true
	}
	return false
}

// CanPerformAction is the coarse decision table keyed by the actor's role.
// It looks only at the target's current role, never at the destination.
func CanPerformAction(actor, target Role, action Action) bool {
	if !actor.Valid() || !target.Valid() {
		return false
	}

	switch actor {
	case SuperAdmin:
		switch action {
		case ActionTransferSuperAdmin:
			return target == Admin
		default:
			return true
		}
	case Admin:
		switch action {
		case ActionPromote:
			return target == Intern || target == Employee
		case ActionDemote:
			return target == Employee || target == Manager
		case ActionTransferSuperAdmin:
			return false
		default:
			return target != SuperAdmin
		}
	case Manager:
		switch action {
		case ActionPromote:
			return target == Intern
		case ActionDemote:
			return target == Employee
		}
		return false
	}
	return false
}

// CanPromote validates the exact destination of a promotion.
func CanPromote(actor, from, to Role) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	switch actor {
	case SuperAdmin:
		return true
	case Admin:
		return (from == Intern && to == Employee) || (from == Employee && to == Manager)
	case Manager:
		return from == Intern && to == Employee
	}
	return false
}
