package assignments

import "time"

type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ProjectID    string    `json:"projectId,omitempty"`
	DepartmentID string    `json:"departmentId,omitempty"`
	AssigneeID   string    `json:"assigneeId,omitempty"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"departmentId,omitempty"`
}

type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"departmentId,omitempty"`
}

// Request names the actor, the task/project/team being changed and the
// employee being assigned to or removed from it.
type Request struct {
	ActorID    string
	ResourceID string
	EmployeeID string
	RequestID  string
	IP         string
}
