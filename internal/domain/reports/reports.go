package reports

import (
	"context"
	"time"

	"workforce/internal/domain/roles"
)

type StoreAPI interface {
	OpenTasks(ctx context.Context, employeeID string) (int, error)
	ProjectCount(ctx context.Context, employeeID string) (int, error)
	UnreadNotifications(ctx context.Context, employeeID string) (int, error)
	UnassignedTasks(ctx context.Context, departmentID string) (int, error)
	Headcount(ctx context.Context, departmentID string) (map[roles.Role]int, error)
	RoleChangesSince(ctx context.Context, since time.Time) (int, error)
}

type EmployeeDashboard struct {
	OpenTasks           int `json:"openTasks"`
	Projects            int `json:"projects"`
	UnreadNotifications int `json:"unreadNotifications"`
}

type ManagerDashboard struct {
	DepartmentID    string         `json:"departmentId"`
	Headcount       map[string]int `json:"headcount"`
	UnassignedTasks int            `json:"unassignedTasks"`
}

type AdminDashboard struct {
	Headcount         map[string]int `json:"headcount"`
	SuperAdmins       int            `json:"superAdmins"`
	RoleChangesLast30 int            `json:"roleChangesLast30Days"`
}

type Service struct {
	store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, Now: time.Now}
}

func (s *Service) Employee(ctx context.Context, employeeID string) (EmployeeDashboard, error) {
	var out EmployeeDashboard
	var err error
	if out.OpenTasks, err = s.store.OpenTasks(ctx, employeeID); err != nil {
		return EmployeeDashboard{}, err
	}
	if out.Projects, err = s.store.ProjectCount(ctx, employeeID); err != nil {
		return EmployeeDashboard{}, err
	}
	if out.UnreadNotifications, err = s.store.UnreadNotifications(ctx, employeeID); err != nil {
		return EmployeeDashboard{}, err
	}
	return out, nil
}

// Manager reports on the viewer's own department only.
func (s *Service) Manager(ctx context.Context, viewer roles.Subject) (ManagerDashboard, error) {
	if viewer.Role.Rank() < roles.Manager.Rank() {
		return ManagerDashboard{}, roles.ErrInsufficientPermissions
	}
	if viewer.DepartmentID == "" {
		return ManagerDashboard{}, roles.ErrScopeViolation
	}
	counts, err := s.store.Headcount(ctx, viewer.DepartmentID)
	if err != nil {
		return ManagerDashboard{}, err
	}
	unassigned, err := s.store.UnassignedTasks(ctx, viewer.DepartmentID)
	if err != nil {
		return ManagerDashboard{}, err
	}
	return ManagerDashboard{
		DepartmentID:    viewer.DepartmentID,
		Headcount:       ladderCounts(counts),
		UnassignedTasks: unassigned,
	}, nil
}

func (s *Service) Admin(ctx context.Context, viewer roles.Subject) (AdminDashboard, error) {
	if viewer.Role.Rank() < roles.Admin.Rank() {
		return AdminDashboard{}, roles.ErrInsufficientPermissions
	}
	counts, err := s.store.Headcount(ctx, "")
	if err != nil {
		return AdminDashboard{}, err
	}
	changes, err := s.store.RoleChangesSince(ctx, s.Now().AddDate(0, 0, -30))
	if err != nil {
		return AdminDashboard{}, err
	}
	return AdminDashboard{
		Headcount:         ladderCounts(counts),
		SuperAdmins:       counts[roles.SuperAdmin],
		RoleChangesLast30: changes,
	}, nil
}

// ladderCounts reports every rank, including empty ones, and drops values
// that are not on the ladder.
func ladderCounts(counts map[roles.Role]int) map[string]int {
	out := make(map[string]int, len(roles.Ladder()))
	for _, role := range roles.Ladder() {
		out[role.String()] = counts[role]
	}
	return out
}
