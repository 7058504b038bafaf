package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/core"
	"workforce/internal/domain/roles"
)

// SystemActor is recorded as the actor of changes made outside a request.
const SystemActor = "system"

// BootstrapSuperAdmin promotes the employee with the configured email to
// SUPER_ADMIN when nobody holds the role yet. It reports whether a change was
// made.
func BootstrapSuperAdmin(ctx context.Context, pool *pgxpool.Pool, auditLog *audit.Service, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}

	var employeeID, previous string
	err := WithTx(ctx, pool, Serializable, func(tx pgx.Tx) error {
		employeeID, previous = "", ""
		var holders int
		if err := tx.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE role = $1 AND status = $2", roles.SuperAdmin.String(), core.StatusActive).Scan(&holders); err != nil {
			return err
		}
		if holders > 0 {
			return nil
		}

		err := tx.QueryRow(ctx, "SELECT id, role FROM employees WHERE lower(email) = lower($1) AND status = $2 FOR UPDATE", email, core.StatusActive).Scan(&employeeID, &previous)
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("bootstrap super admin email not found", "email", email)
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, "UPDATE employees SET role = $1, updated_at = now() WHERE id = $2", roles.SuperAdmin.String(), employeeID)
		return err
	})
	if err != nil || employeeID == "" {
		return false, err
	}

	if auditLog != nil {
		if err := auditLog.Record(ctx, audit.Event{
			ActorID:      SystemActor,
			ActorRole:    SystemActor,
			Action:       audit.ActionRoleBootstrap,
			EntityType:   audit.EntityEmployee,
			EntityID:     employeeID,
			PreviousRole: previous,
			NewRole:      roles.SuperAdmin.String(),
			Reason:       "bootstrap",
		}); err != nil {
			slog.Warn("audit role.bootstrap failed", "err", err)
		}
	}
	slog.Info("bootstrapped super admin", "employeeId", employeeID)
	return true, nil
}
