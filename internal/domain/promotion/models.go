package promotion

import "workforce/internal/domain/roles"

// Request is one role-changing call. NewRole is optional for promote and
// demote and required for ChangeRole.
type Request struct {
	ActorID   string
	TargetID  string
	Action    roles.Action
	NewRole   roles.Role
	Reason    string
	RequestID string
	IP        string
}

type Outcome struct {
	TargetID          string       `json:"targetId"`
	Action            roles.Action `json:"action"`
	PreviousRole      roles.Role   `json:"previousRole"`
	ResultingRole     roles.Role   `json:"resultingRole"`
	ActorID           string       `json:"actorId"`
	ActorPreviousRole roles.Role   `json:"actorPreviousRole"`
	ActorRole         roles.Role   `json:"actorRole"`
}
