// Package notifications delivers topic activity to interested subscribers
// over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"tribune/internal/models"
	"tribune/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish topic activity into Redis channels.
// A nil Notifier or nil client makes every publish a no-op so the app runs
// without Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(
	ctx context.Context, userID uint, payload string,
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishTopicEvent publishes a solved-state event to the topic's channel.
// Only events an applied transition produced reach this point; idempotent
// no-ops publish nothing.
func (n *Notifier) PublishTopicEvent(
	ctx context.Context, event models.TopicEvent,
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	observability.EventsPublished.WithLabelValues(event.Type).Inc()
	return n.rdb.Publish(ctx, TopicChannel(event.TopicID), string(payload)).Err()
}

// PublishNewPost notifies the topic channel about a reply. Anonymous and
// mod-only posts carry only the post id; subscribers re-fetch through the
// privilege-checked read path, so the raw payload never leaks content.
func (n *Notifier) PublishNewPost(
	ctx context.Context, topicID, postID uint,
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload := map[string]interface{}{
		"type": "post",
		"tid":  topicID,
		"pid":  postID,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, TopicChannel(topicID), string(payloadJSON)).Err()
}

// StartTopicSubscriber subscribes to pattern `topic:events:*` and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartTopicSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "topic:events:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in TopicSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// TopicChannel derives the Redis channel name for a topic.
func TopicChannel(topicID uint) string {
	return "topic:events:" + strconv.FormatUint(uint64(topicID), 10)
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
