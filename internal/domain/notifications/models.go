package notifications

import "time"

type Notification struct {
	ID          string         `json:"id"`
	RecipientID string         `json:"recipientId"`
	Type        string         `json:"type"`
	Message     string         `json:"message"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ReadAt      *time.Time     `json:"readAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
