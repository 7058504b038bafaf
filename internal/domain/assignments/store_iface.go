package assignments

import (
	"context"

	"workforce/internal/domain/core"
)

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	GetTask(ctx context.Context, taskID string) (Task, error)
	SetTaskAssignee(ctx context.Context, taskID, employeeID string) (Task, error)
	GetProject(ctx context.Context, projectID string) (Project, error)
	AddProjectMember(ctx context.Context, projectID, employeeID string) (bool, error)
	GetTeam(ctx context.Context, teamID string) (Team, error)
	AddTeamMember(ctx context.Context, teamID, employeeID string) (bool, error)
	RemoveTeamMember(ctx context.Context, teamID, employeeID string) (bool, error)
}
