package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/roles"
)

var ErrNotFound = errors.New("employee not found")

const employeeColumns = `id, first_name, last_name, email, COALESCE(phone, ''), role,
           COALESCE(department_id::text, ''), status, created_at, updated_at`

// ParseID returns the canonical form of a UUID identifier. Keys are compared
// as uuid so lookups stay on the primary key index; a malformed id cannot
// match any row.
func ParseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Row is satisfied by pgx.Row and lets transactional stores reuse ScanEmployee.
type Row interface {
	Scan(dest ...any) error
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func SelectEmployee(where string) string {
	return "SELECT " + employeeColumns + " FROM employees " + where
}

func ScanEmployee(row Row) (Employee, error) {
	var emp Employee
	var role string
	err := row.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone, &role,
		&emp.DepartmentID, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	emp.Role = roles.Role(role)
	return emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	id, ok := ParseID(employeeID)
	if !ok {
		return Employee{}, ErrNotFound
	}
	return ScanEmployee(s.DB.QueryRow(ctx, SelectEmployee("WHERE id = $1"), id))
}

func (s *Store) ListEmployees(ctx context.Context, departmentID string, limit, offset int) ([]Employee, error) {
	var dept any
	if departmentID != "" {
		id, ok := ParseID(departmentID)
		if !ok {
			return nil, nil
		}
		dept = id
	}
	rows, err := s.DB.Query(ctx, SelectEmployee(`
    WHERE ($1::uuid IS NULL OR department_id = $1::uuid)
    ORDER BY last_name, first_name
    LIMIT $2 OFFSET $3`), dept, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := ScanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

// EmployeeIDsByRoles returns the IDs of active employees holding any of rs.
func (s *Store) EmployeeIDsByRoles(ctx context.Context, rs ...roles.Role) ([]string, error) {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.String())
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM employees
    WHERE role = ANY($1) AND status = $2
    ORDER BY id
  `, names, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(manager_id::text, ''), created_at
    FROM departments
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.ManagerID, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}
