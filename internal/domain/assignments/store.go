package assignments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/core"
)

type Store struct {
	DB   *pgxpool.Pool
	Core *core.Store
}

func NewStore(db *pgxpool.Pool, coreStore *core.Store) *Store {
	return &Store{DB: db, Core: coreStore}
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (core.Employee, error) {
	return s.Core.GetEmployee(ctx, employeeID)
}

func scanTask(row core.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.ProjectID, &t.DepartmentID, &t.AssigneeID, &t.Status, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

const taskColumns = `id, title, COALESCE(project_id::text, ''), COALESCE(department_id::text, ''),
           COALESCE(assignee_id::text, ''), status, updated_at`

// ids canonicalizes every key of one statement; ok is false when any of
// them is malformed.
func ids(raw ...string) ([]any, bool) {
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		id, ok := core.ParseID(r)
		if !ok {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

func (s *Store) GetTask(ctx context.Context, taskID string) (Task, error) {
	args, ok := ids(taskID)
	if !ok {
		return Task{}, ErrNotFound
	}
	return scanTask(s.DB.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", args...))
}

func (s *Store) SetTaskAssignee(ctx context.Context, taskID, employeeID string) (Task, error) {
	args, ok := ids(employeeID, taskID)
	if !ok {
		return Task{}, ErrNotFound
	}
	return scanTask(s.DB.QueryRow(ctx, `
    UPDATE tasks SET assignee_id = $1, updated_at = now()
    WHERE id = $2
    RETURNING `+taskColumns, args...))
}

func (s *Store) GetProject(ctx context.Context, projectID string) (Project, error) {
	args, ok := ids(projectID)
	if !ok {
		return Project{}, ErrNotFound
	}
	var p Project
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(department_id::text, '')
    FROM projects WHERE id = $1
  `, args...).Scan(&p.ID, &p.Name, &p.DepartmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return p, err
}

// AddProjectMember reports false when the employee was already a member.
func (s *Store) AddProjectMember(ctx context.Context, projectID, employeeID string) (bool, error) {
	args, ok := ids(projectID, employeeID)
	if !ok {
		return false, ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO project_members (project_id, employee_id)
    VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetTeam(ctx context.Context, teamID string) (Team, error) {
	args, ok := ids(teamID)
	if !ok {
		return Team{}, ErrNotFound
	}
	var t Team
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(department_id::text, '')
    FROM teams WHERE id = $1
  `, args...).Scan(&t.ID, &t.Name, &t.DepartmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, ErrNotFound
	}
	return t, err
}

func (s *Store) AddTeamMember(ctx context.Context, teamID, employeeID string) (bool, error) {
	args, ok := ids(teamID, employeeID)
	if !ok {
		return false, ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO team_members (team_id, employee_id)
    VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) RemoveTeamMember(ctx context.Context, teamID, employeeID string) (bool, error) {
	args, ok := ids(teamID, employeeID)
	if !ok {
		return false, nil
	}
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM team_members WHERE team_id = $1 AND employee_id = $2
  `, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
