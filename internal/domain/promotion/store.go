package promotion

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/core"
	"workforce/internal/domain/roles"
	"workforce/internal/platform/db"
)

type Store struct {
	DB   *pgxpool.Pool
	Core *core.Store
}

func NewStore(pool *pgxpool.Pool, coreStore *core.Store) *Store {
	return &Store{DB: pool, Core: coreStore}
}

func (s *Store) InTx(ctx context.Context, fn func(Tx) error) error {
	return db.WithTx(ctx, s.DB, db.Serializable, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (s *Store) EmployeeIDsByRoles(ctx context.Context, rs ...roles.Role) ([]string, error) {
	return s.Core.EmployeeIDsByRoles(ctx, rs...)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) EmployeeForUpdate(ctx context.Context, employeeID string) (core.Employee, error) {
	id, ok := core.ParseID(employeeID)
	if !ok {
		return core.Employee{}, core.ErrNotFound
	}
	return core.ScanEmployee(t.tx.QueryRow(ctx, core.SelectEmployee("WHERE id = $1 FOR UPDATE"), id))
}

// CountByRole counts active holders of role and locks them so a concurrent
// change to any of them waits for this transaction.
func (t *pgTx) CountByRole(ctx context.Context, role roles.Role) (int, error) {
	rows, err := t.tx.Query(ctx, "SELECT id FROM employees WHERE role = $1 AND status = $2 FOR UPDATE", role.String(), core.StatusActive)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	return count, rows.Err()
}

func (t *pgTx) SetRole(ctx context.Context, employeeID string, role roles.Role) error {
	id, ok := core.ParseID(employeeID)
	if !ok {
		return core.ErrNotFound
	}
	tag, err := t.tx.Exec(ctx, "UPDATE employees SET role = $1, updated_at = now() WHERE id = $2", role.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return core.ErrNotFound
	}
	return nil
}
