package promotion

import (
	"context"

	"workforce/internal/domain/core"
	"workforce/internal/domain/roles"
)

// Tx is the unit of work a role change runs in. Every write made through it
// commits or rolls back together.
type Tx interface {
	EmployeeForUpdate(ctx context.Context, employeeID string) (core.Employee, error)
	// CountByRole counts active holders only.
	CountByRole(ctx context.Context, role roles.Role) (int, error)
	SetRole(ctx context.Context, employeeID string, role roles.Role) error
}

type StoreAPI interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	EmployeeIDsByRoles(ctx context.Context, rs ...roles.Role) ([]string, error)
}
