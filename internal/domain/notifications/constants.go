package notifications

const (
	TypeRoleChanged       = "role_changed"
	TypeRoleChangeApplied = "role_change_applied"
	TypeAdminRoleGranted  = "admin_role_granted"
	TypeTaskAssigned      = "task_assigned"
	TypeProjectAssigned   = "project_assigned"
	TypeTeamMembership    = "team_membership_changed"
)
