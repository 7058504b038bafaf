package notifications

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateNotification(ctx context.Context, n Notification) (string, error) {
	var metadata []byte
	if len(n.Metadata) > 0 {
		payload, err := json.Marshal(n.Metadata)
		if err != nil {
			return "", err
		}
		metadata = payload
	}

	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (recipient_id, type, message, metadata_json)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, n.RecipientID, n.Type, n.Message, metadata).Scan(&id)
	return id, err
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, recipient_id, type, message, metadata_json, read_at, created_at
    FROM notifications
    WHERE recipient_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var metadata []byte
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &metadata, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountNotifications(ctx context.Context, recipientID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE recipient_id = $1", recipientID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error) {
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return false, nil
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE recipient_id = $1 AND id = $2
  `, recipientID, id.String())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
