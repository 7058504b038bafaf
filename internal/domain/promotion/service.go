package promotion

import (
	"context"
	"errors"
	"fmt"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/core"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/roles"
)

type AuditLog interface {
	Record(ctx context.Context, e audit.Event) error
}

type Notifier interface {
	Notify(ctx context.Context, n notifications.Notification) error
}

type Metrics interface {
	ObserveDecision(action, outcome string)
	ObserveRoleChange(role string)
}

type Option func(*Service)

// WithActorConfirmation sends the actor a confirmation for every applied
// change. Transfers always confirm.
func WithActorConfirmation(enabled bool) Option {
	return func(s *Service) { s.notifyActor = enabled }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithFanOutLimit bounds concurrent notification writes.
func WithFanOutLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fanOutLimit = n
		}
	}
}

type Service struct {
	store       StoreAPI
	audit       AuditLog
	notifier    Notifier
	metrics     Metrics
	notifyActor bool
	fanOutLimit int
}

func NewService(store StoreAPI, auditLog AuditLog, notifier Notifier, opts ...Option) *Service {
	s := &Service{store: store, audit: auditLog, notifier: notifier, fanOutLimit: 8}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Promote(ctx context.Context, req Request) (Outcome, error) {
	req.Action = roles.ActionPromote
	return s.Apply(ctx, req)
}

func (s *Service) Demote(ctx context.Context, req Request) (Outcome, error) {
	req.Action = roles.ActionDemote
	return s.Apply(ctx, req)
}

func (s *Service) TransferSuperAdmin(ctx context.Context, req Request) (Outcome, error) {
	req.Action = roles.ActionTransferSuperAdmin
	req.NewRole = ""
	return s.Apply(ctx, req)
}

// ChangeRole moves the target straight to req.NewRole, resolving the ladder
// action from the direction of the move.
func (s *Service) ChangeRole(ctx context.Context, req Request) (Outcome, error) {
	req.Action = ""
	return s.Apply(ctx, req)
}

// Apply validates and persists one role change in a single transaction, then
// emits the audit event and notifications. An empty req.Action means an
// explicit change to req.NewRole.
func (s *Service) Apply(ctx context.Context, req Request) (Outcome, error) {
	out, err := s.apply(ctx, req)
	label := string(req.Action)
	if label == "" {
		label = "change_role"
	}
	s.observe(label, err)
	if err != nil {
		return Outcome{}, err
	}

	s.emit(ctx, req, out)
	return out, nil
}

func (s *Service) apply(ctx context.Context, req Request) (Outcome, error) {
	if req.ActorID == "" {
		return Outcome{}, roles.ErrUnauthenticated
	}
	if req.TargetID == "" {
		return Outcome{}, roles.ErrTargetNotFound
	}
	switch req.Action {
	case "":
		if !req.NewRole.Valid() {
			return Outcome{}, fmt.Errorf("%w: unknown role %q", roles.ErrInvalidTransition, req.NewRole)
		}
	case roles.ActionPromote, roles.ActionDemote, roles.ActionTransferSuperAdmin:
	default:
		return Outcome{}, fmt.Errorf("%w: %s does not change roles", roles.ErrInsufficientPermissions, req.Action)
	}

	var out Outcome
	err := s.store.InTx(ctx, func(tx Tx) error {
		actor, target, err := lockPair(ctx, tx, req.ActorID, req.TargetID)
		if err != nil {
			return err
		}
		if !actor.Active() {
			return fmt.Errorf("%w: actor account is %s", roles.ErrInsufficientPermissions, actor.Status)
		}
		// A SUPER_ADMIN may step down through an explicit change; the holder
		// count guard below keeps at least one in place.
		if actor.ID == target.ID && (req.Action != "" || actor.Role != roles.SuperAdmin) {
			return fmt.Errorf("%w: employees cannot change their own role", roles.ErrInsufficientPermissions)
		}

		action := req.Action
		var resulting roles.Role
		if action == "" {
			action, resulting, err = roles.EvaluateChange(actor.Subject(), target.Subject(), req.NewRole)
		} else {
			resulting, err = roles.Evaluate(actor.Subject(), target.Subject(), action, req.NewRole)
		}
		if err != nil {
			return err
		}

		out = Outcome{
			TargetID:          target.ID,
			Action:            action,
			PreviousRole:      target.Role,
			ResultingRole:     resulting,
			ActorID:           actor.ID,
			ActorPreviousRole: actor.Role,
			ActorRole:         actor.Role,
		}

		if action == roles.ActionTransferSuperAdmin {
			if err := tx.SetRole(ctx, actor.ID, roles.Admin); err != nil {
				return err
			}
			out.ActorRole = roles.Admin
			return tx.SetRole(ctx, target.ID, roles.SuperAdmin)
		}

		if target.Role == roles.SuperAdmin && resulting != roles.SuperAdmin {
			active, err := tx.CountByRole(ctx, roles.SuperAdmin)
			if err != nil {
				return err
			}
			remaining := active
			if target.Active() {
				remaining--
			}
			if remaining < 1 {
				return roles.ErrCannotDemoteLastSuperAdmin
			}
		}
		return tx.SetRole(ctx, target.ID, resulting)
	})
	if err != nil {
		return Outcome{}, classify(err)
	}
	return out, nil
}

// lockPair loads both rows in ID order so two concurrent transfers between
// the same pair cannot deadlock.
func lockPair(ctx context.Context, tx Tx, actorID, targetID string) (core.Employee, core.Employee, error) {
	load := func(id string, notFound error) (core.Employee, error) {
		emp, err := tx.EmployeeForUpdate(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			return core.Employee{}, notFound
		}
		return emp, err
	}

	if targetID < actorID {
		target, err := load(targetID, roles.ErrTargetNotFound)
		if err != nil {
			return core.Employee{}, core.Employee{}, err
		}
		actor, err := load(actorID, roles.ErrActorNotFound)
		return actor, target, err
	}

	actor, err := load(actorID, roles.ErrActorNotFound)
	if err != nil {
		return core.Employee{}, core.Employee{}, err
	}
	target, err := load(targetID, roles.ErrTargetNotFound)
	return actor, target, err
}

// classify keeps domain errors as they are and reports anything else as a
// failed persistence write.
func classify(err error) error {
	if roles.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", roles.ErrExternalCollaboratorFailure, err)
}

func (s *Service) observe(action string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "allowed"
	if err != nil {
		outcome = roles.KindOf(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	s.metrics.ObserveDecision(action, outcome)
}
