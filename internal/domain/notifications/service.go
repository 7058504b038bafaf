package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

type Service struct {
	store     StoreAPI
	Publisher Publisher
}

func New(store StoreAPI, publisher Publisher) *Service {
	return &Service{store: store, Publisher: publisher}
}

// Notify stores n for polling clients, then pushes it to subscribers. A failed
// push is logged; the stored row is what clients read back.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	id, err := s.store.CreateNotification(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if s.Publisher == nil {
		return nil
	}
	if err := s.Publisher.Publish(ctx, n); err != nil {
		slog.Warn("notification publish failed", "recipientId", n.RecipientID, "type", n.Type, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, recipientID, limit, offset)
}

func (s *Service) Count(ctx context.Context, recipientID string) (int, error) {
	return s.store.CountNotifications(ctx, recipientID)
}

func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	updated, err := s.store.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}
