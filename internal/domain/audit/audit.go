package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionRolePromote            = "role.promote"
	ActionRoleDemote             = "role.demote"
	ActionRoleTransferSuperAdmin = "role.transfer_super_admin"
	ActionRoleBootstrap          = "role.bootstrap"
	ActionTaskAssign             = "task.assign"
	ActionProjectAssign          = "project.assign"
	ActionTeamMemberAdd          = "team.member.add"
	ActionTeamMemberRemove       = "team.member.remove"

	EntityEmployee = "employee"
	EntityTask     = "task"
	EntityProject  = "project"
	EntityTeam     = "team"
)

type Event struct {
	ID           string          `json:"id"`
	ActorID      string          `json:"actorId"`
	ActorRole    string          `json:"actorRole"`
	Action       string          `json:"action"`
	EntityType   string          `json:"entityType"`
	EntityID     string          `json:"entityId"`
	PreviousRole string          `json:"previousRole,omitempty"`
	NewRole      string          `json:"newRole,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	RequestID    string          `json:"requestId"`
	IP           string          `json:"ip"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type Filter struct {
	ActionPrefix string
	EntityType   string
	EntityID     string
	ActorID      string
	From         time.Time
	To           time.Time
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record appends evt. The log is append-only; nothing in this package
// updates or deletes rows.
func (s *Service) Record(ctx context.Context, evt Event) error {
	createdAt := evt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var metadata []byte
	if len(evt.Metadata) > 0 {
		metadata = evt.Metadata
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, actor_role, action, entity_type, entity_id, previous_role, new_role, reason, request_id, ip, metadata_json, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
  `, evt.ActorID, evt.ActorRole, evt.Action, evt.EntityType, evt.EntityID,
		nullIfEmpty(evt.PreviousRole), nullIfEmpty(evt.NewRole), nullIfEmpty(evt.Reason),
		evt.RequestID, evt.IP, metadata, createdAt)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery(`SELECT id, actor_id, actor_role, action, entity_type, entity_id,
    COALESCE(previous_role, ''), COALESCE(new_role, ''), COALESCE(reason, ''),
    request_id, ip, metadata_json, created_at`, filter)
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.ActorRole, &evt.Action, &evt.EntityType, &evt.EntityID,
			&evt.PreviousRole, &evt.NewRole, &evt.Reason, &evt.RequestID, &evt.IP, &evt.Metadata, &evt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.ActionPrefix != "" {
		args = append(args, filter.ActionPrefix+"%")
		query += fmt.Sprintf(" AND action LIKE $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	return query, args
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
