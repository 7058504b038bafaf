package assignments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/core"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/roles"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrNotMember = errors.New("employee is not a member")
)

type AuditLog interface {
	Record(ctx context.Context, e audit.Event) error
}

type Notifier interface {
	Notify(ctx context.Context, n notifications.Notification) error
}

type Metrics interface {
	ObserveDecision(action, outcome string)
}

type Option func(*Service)

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

type Service struct {
	store    StoreAPI
	audit    AuditLog
	notifier Notifier
	metrics  Metrics
}

func NewService(store StoreAPI, auditLog AuditLog, notifier Notifier, opts ...Option) *Service {
	s := &Service{store: store, audit: auditLog, notifier: notifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) AssignTask(ctx context.Context, req Request) (Task, error) {
	task, err := s.store.GetTask(ctx, req.ResourceID)
	if err != nil {
		return Task{}, s.fail(roles.ActionAssignTask, err)
	}
	actor, err := s.authorize(ctx, req, task.DepartmentID, roles.ActionAssignTask)
	if err != nil {
		return Task{}, err
	}

	previous := task.AssigneeID
	task, err = s.store.SetTaskAssignee(ctx, task.ID, req.EmployeeID)
	if err != nil {
		return Task{}, s.fail(roles.ActionAssignTask, err)
	}

	s.record(ctx, req, actor, audit.ActionTaskAssign, audit.EntityTask, task.ID, map[string]string{
		"assigneeId":         req.EmployeeID,
		"previousAssigneeId": previous,
	})
	s.notify(ctx, notifications.Notification{
		RecipientID: req.EmployeeID,
		Type:        notifications.TypeTaskAssigned,
		Message:     fmt.Sprintf("You have been assigned the task %q", task.Title),
		Metadata:    map[string]any{"taskId": task.ID, "assignedBy": actor.ID},
	})
	return task, nil
}

func (s *Service) AssignProject(ctx context.Context, req Request) (Project, error) {
	project, err := s.store.GetProject(ctx, req.ResourceID)
	if err != nil {
		return Project{}, s.fail(roles.ActionAssignProject, err)
	}
	actor, err := s.authorize(ctx, req, project.DepartmentID, roles.ActionAssignProject)
	if err != nil {
		return Project{}, err
	}

	added, err := s.store.AddProjectMember(ctx, project.ID, req.EmployeeID)
	if err != nil {
		return Project{}, s.fail(roles.ActionAssignProject, err)
	}
	if !added {
		return project, nil
	}

	s.record(ctx, req, actor, audit.ActionProjectAssign, audit.EntityProject, project.ID, map[string]string{
		"employeeId": req.EmployeeID,
	})
	s.notify(ctx, notifications.Notification{
		RecipientID: req.EmployeeID,
		Type:        notifications.TypeProjectAssigned,
		Message:     fmt.Sprintf("You have been added to the project %q", project.Name),
		Metadata:    map[string]any{"projectId": project.ID, "assignedBy": actor.ID},
	})
	return project, nil
}

func (s *Service) AddTeamMember(ctx context.Context, req Request) (Team, error) {
	return s.changeTeam(ctx, req, true)
}

func (s *Service) RemoveTeamMember(ctx context.Context, req Request) (Team, error) {
	return s.changeTeam(ctx, req, false)
}

func (s *Service) changeTeam(ctx context.Context, req Request, add bool) (Team, error) {
	team, err := s.store.GetTeam(ctx, req.ResourceID)
	if err != nil {
		return Team{}, s.fail(roles.ActionManageTeam, err)
	}
	actor, err := s.authorize(ctx, req, team.DepartmentID, roles.ActionManageTeam)
	if err != nil {
		return Team{}, err
	}

	var changed bool
	if add {
		changed, err = s.store.AddTeamMember(ctx, team.ID, req.EmployeeID)
	} else {
		changed, err = s.store.RemoveTeamMember(ctx, team.ID, req.EmployeeID)
	}
	if err != nil {
		return Team{}, s.fail(roles.ActionManageTeam, err)
	}
	if !changed {
		if add {
			return team, nil
		}
		return Team{}, ErrNotMember
	}

	action, verb := audit.ActionTeamMemberAdd, "added to"
	if !add {
		action, verb = audit.ActionTeamMemberRemove, "removed from"
	}
	s.record(ctx, req, actor, action, audit.EntityTeam, team.ID, map[string]string{
		"employeeId": req.EmployeeID,
	})
	s.notify(ctx, notifications.Notification{
		RecipientID: req.EmployeeID,
		Type:        notifications.TypeTeamMembership,
		Message:     fmt.Sprintf("You have been %s the team %q", verb, team.Name),
		Metadata:    map[string]any{"teamId": team.ID, "changedBy": actor.ID, "added": add},
	})
	return team, nil
}

// authorize loads both parties and checks the delegated action against the
// employee and, for a scoped resource, the resource's department.
func (s *Service) authorize(ctx context.Context, req Request, resourceDept string, action roles.Action) (core.Employee, error) {
	if req.ActorID == "" {
		return core.Employee{}, s.fail(action, roles.ErrUnauthenticated)
	}
	actor, err := s.store.GetEmployee(ctx, req.ActorID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Employee{}, s.fail(action, roles.ErrActorNotFound)
	}
	if err != nil {
		return core.Employee{}, s.fail(action, err)
	}
	if !actor.Active() {
		return core.Employee{}, s.fail(action, fmt.Errorf("%w: actor account is %s", roles.ErrInsufficientPermissions, actor.Status))
	}
	target, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Employee{}, s.fail(action, roles.ErrTargetNotFound)
	}
	if err != nil {
		return core.Employee{}, s.fail(action, err)
	}

	if err := roles.AuthorizeDelegated(actor.Subject(), target.Subject(), action); err != nil {
		return core.Employee{}, s.fail(action, err)
	}
	if resourceDept != "" {
		resource := roles.Subject{ID: req.ResourceID, DepartmentID: resourceDept}
		if err := roles.AuthorizeDelegated(actor.Subject(), resource, action); err != nil {
			return core.Employee{}, s.fail(action, err)
		}
	}

	s.observe(action, nil)
	return actor, nil
}

// fail counts the rejection and reports unclassified store errors as a
// failed persistence write.
func (s *Service) fail(action roles.Action, err error) error {
	if roles.KindOf(err) == "" && !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled) {
		err = fmt.Errorf("%w: %w", roles.ErrExternalCollaboratorFailure, err)
	}
	s.observe(action, err)
	return err
}

func (s *Service) observe(action roles.Action, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "allowed"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "NotFound"
	case err != nil:
		outcome = roles.KindOf(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	s.metrics.ObserveDecision(string(action), outcome)
}

func (s *Service) record(ctx context.Context, req Request, actor core.Employee, action, entityType, entityID string, meta map[string]string) {
	if s.audit == nil {
		return
	}
	raw, _ := json.Marshal(meta)
	err := s.audit.Record(ctx, audit.Event{
		ActorID:    actor.ID,
		ActorRole:  actor.Role.String(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  req.RequestID,
		IP:         req.IP,
		Metadata:   raw,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("audit assignment failed", "action", action, "entityId", entityID, "err", err)
	}
}

func (s *Service) notify(ctx context.Context, n notifications.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		slog.Warn("assignment notification failed", "recipientId", n.RecipientID, "type", n.Type, "err", err)
	}
}
