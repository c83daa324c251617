package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// 论坛实时事件类型。前端通过 WebSocket 订阅这些变更。
const (
	EventPostCreated    = "forum.post_created"
	EventReplyCreated   = "forum.reply_created"
	EventAnswerAccepted = "forum.answer_accepted"
)

// EventsChannel 是所有论坛变更广播的 Redis Pub/Sub 频道。
const EventsChannel = "forum_events"

// Event 描述一次论坛数据变更。
type Event struct {
	Type           string `json:"type"`
	PostID         uint   `json:"post_id"`
	ReplyID        uint   `json:"reply_id,omitempty"`
	ActorProfileID uint   `json:"actor_profile_id"`
}

// EventPublisher 抽象事件广播，便于测试替身。
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher 将事件发布到共享的论坛频道。
type RedisPublisher struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisPublisher 构造基于 Redis Pub/Sub 的事件发布器。
func NewRedisPublisher(client redis.UniversalClient, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{client: client, logger: logger}
}

// Publish 实现 EventPublisher。
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal forum event: %w", err)
	}
	if err := p.client.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish forum event to %q: %w", EventsChannel, err)
	}
	return nil
}
