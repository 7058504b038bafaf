package notifications

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notifications:"

// Channel is the pub/sub channel a recipient's client subscribes to.
func Channel(recipientID string) string {
	return channelPrefix + recipientID
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel(n.RecipientID), payload).Err()
}
