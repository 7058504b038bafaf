package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/core"
	"workforce/internal/domain/roles"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// count runs a single-key COUNT query. A malformed key matches nothing.
func (s *Store) count(ctx context.Context, query, rawID string) (int, error) {
	id, ok := core.ParseID(rawID)
	if !ok {
		return 0, nil
	}
	var n int
	err := s.DB.QueryRow(ctx, query, id).Scan(&n)
	return n, err
}

func (s *Store) OpenTasks(ctx context.Context, employeeID string) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM tasks WHERE assignee_id = $1 AND status <> 'done'", employeeID)
}

func (s *Store) ProjectCount(ctx context.Context, employeeID string) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM project_members WHERE employee_id = $1", employeeID)
}

func (s *Store) UnreadNotifications(ctx context.Context, employeeID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE recipient_id = $1 AND read_at IS NULL", employeeID).Scan(&n)
	return n, err
}

func (s *Store) UnassignedTasks(ctx context.Context, departmentID string) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM tasks WHERE department_id = $1 AND assignee_id IS NULL", departmentID)
}

// Headcount groups employees by role. An empty departmentID counts the
// whole organisation.
func (s *Store) Headcount(ctx context.Context, departmentID string) (map[roles.Role]int, error) {
	query := "SELECT role, COUNT(1) FROM employees WHERE status = $1"
	args := []any{core.StatusActive}
	if departmentID != "" {
		id, ok := core.ParseID(departmentID)
		if !ok {
			return map[roles.Role]int{}, nil
		}
		query += " AND department_id = $2"
		args = append(args, id)
	}
	query += " GROUP BY role"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[roles.Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[roles.Role(role)] = n
	}
	return counts, rows.Err()
}

func (s *Store) RoleChangesSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM audit_events WHERE action LIKE 'role.%' AND created_at >= $1", since).Scan(&n)
	return n, err
}
