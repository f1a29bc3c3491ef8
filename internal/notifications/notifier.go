// Package notifications publishes realtime events into Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BroadcastChannel receives events meant for every connected client.
const BroadcastChannel = "notifications:broadcast"

// Event is the envelope published on every channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel returns the channel for one user's events.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	return n.publish(ctx, UserChannel(userID), event)
}

// PublishBroadcast sends an event to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, event Event) error {
	return n.publish(ctx, BroadcastChannel, event)
}

func (n *Notifier) publish(ctx context.Context, channel string, event Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return n.rdb.Publish(ctx, channel, payload).Err()
}
