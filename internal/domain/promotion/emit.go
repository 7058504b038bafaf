package promotion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/roles"
)

// emit hands the committed change to the audit log and the notifier. Neither
// can fail the change; errors are logged.
func (s *Service) emit(ctx context.Context, req Request, out Outcome) {
	if s.metrics != nil {
		s.metrics.ObserveRoleChange(out.ResultingRole.String())
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, auditEvent(req, out)); err != nil {
			slog.Warn("audit role change failed", "targetId", out.TargetID, "err", err)
		}
	}

	if s.notifier == nil {
		return
	}
	for _, n := range s.directNotifications(out) {
		if err := s.notifier.Notify(ctx, n); err != nil {
			slog.Warn("role change notification failed", "recipientId", n.RecipientID, "type", n.Type, "err", err)
		}
	}
	if out.ResultingRole == roles.Admin || out.ResultingRole == roles.SuperAdmin {
		s.fanOut(ctx, out)
	}
}

// confirmsActor reports whether the actor receives a direct confirmation.
func (s *Service) confirmsActor(out Outcome) bool {
	return s.notifyActor || out.Action == roles.ActionTransferSuperAdmin
}

func auditEvent(req Request, out Outcome) audit.Event {
	action := audit.ActionRolePromote
	switch out.Action {
	case roles.ActionDemote:
		action = audit.ActionRoleDemote
	case roles.ActionTransferSuperAdmin:
		action = audit.ActionRoleTransferSuperAdmin
	}

	var meta json.RawMessage
	if out.Action == roles.ActionTransferSuperAdmin {
		meta, _ = json.Marshal(map[string]string{
			"actorPreviousRole": out.ActorPreviousRole.String(),
			"actorNewRole":      out.ActorRole.String(),
		})
	}

	return audit.Event{
		ActorID:      out.ActorID,
		ActorRole:    out.ActorPreviousRole.String(),
		Action:       action,
		EntityType:   audit.EntityEmployee,
		EntityID:     out.TargetID,
		PreviousRole: out.PreviousRole.String(),
		NewRole:      out.ResultingRole.String(),
		Reason:       req.Reason,
		RequestID:    req.RequestID,
		IP:           req.IP,
		Metadata:     meta,
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *Service) directNotifications(out Outcome) []notifications.Notification {
	meta := map[string]any{
		"previousRole": out.PreviousRole.String(),
		"newRole":      out.ResultingRole.String(),
		"changedBy":    out.ActorID,
	}

	list := []notifications.Notification{{
		RecipientID: out.TargetID,
		Type:        notifications.TypeRoleChanged,
		Message:     fmt.Sprintf("Your role has been changed from %s to %s", out.PreviousRole, out.ResultingRole),
		Metadata:    meta,
	}}

	if s.confirmsActor(out) {
		msg := fmt.Sprintf("You changed the role of %s from %s to %s", out.TargetID, out.PreviousRole, out.ResultingRole)
		if out.Action == roles.ActionTransferSuperAdmin {
			msg = fmt.Sprintf("You transferred SUPER_ADMIN to %s; your role is now %s", out.TargetID, out.ActorRole)
		}
		list = append(list, notifications.Notification{
			RecipientID: out.ActorID,
			Type:        notifications.TypeRoleChangeApplied,
			Message:     msg,
			Metadata: map[string]any{
				"targetId":     out.TargetID,
				"previousRole": out.PreviousRole.String(),
				"newRole":      out.ResultingRole.String(),
				"actorRole":    out.ActorRole.String(),
			},
		})
	}
	return list
}

// fanOut tells every ADMIN and SUPER_ADMIN about a new holder, except the
// target and an actor who already got a confirmation.
func (s *Service) fanOut(ctx context.Context, out Outcome) {
	ids, err := s.store.EmployeeIDsByRoles(ctx, roles.Admin, roles.SuperAdmin)
	if err != nil {
		slog.Warn("admin fan-out lookup failed", "err", err)
		return
	}

	skipActor := s.confirmsActor(out)
	var g errgroup.Group
	g.SetLimit(s.fanOutLimit)
	for _, id := range ids {
		if id == out.TargetID || (skipActor && id == out.ActorID) {
			continue
		}
		n := notifications.Notification{
			RecipientID: id,
			Type:        notifications.TypeAdminRoleGranted,
			Message:     fmt.Sprintf("%s now holds %s", out.TargetID, out.ResultingRole),
			Metadata: map[string]any{
				"targetId": out.TargetID,
				"newRole":  out.ResultingRole.String(),
			},
		}
		g.Go(func() error {
			if err := s.notifier.Notify(ctx, n); err != nil {
				slog.Warn("admin fan-out notification failed", "recipientId", n.RecipientID, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
