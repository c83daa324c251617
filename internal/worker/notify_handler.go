package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"careernavigator/internal/database"
	"careernavigator/internal/tasks"
)

// ForumNotifyTaskHandler 把论坛事件投递到帖子作者的通知通道。
type ForumNotifyTaskHandler struct {
	db          *gorm.DB
	redisClient redis.UniversalClient
	logger      *slog.Logger
}

// NewForumNotifyTaskHandler 创建任务处理器。
func NewForumNotifyTaskHandler(db *gorm.DB, redisClient redis.UniversalClient, logger *slog.Logger) *ForumNotifyTaskHandler {
	return &ForumNotifyTaskHandler{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ForumNotifyTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := h.logger

	var payload tasks.ForumNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("event", payload.Event),
		slog.Uint64("post_id", uint64(payload.PostID)),
		slog.Uint64("target_profile_id", uint64(payload.TargetProfileID)),
	)

	// 自己回复自己的帖子不用提醒。
	if payload.ActorProfileID == payload.TargetProfileID {
		return nil
	}

	var post database.ForumPost
	if err := h.db.WithContext(ctx).First(&post, payload.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("post deleted before notification, skipping")
			return nil
		}
		log.Error("query post failed", slog.Any("error", err))
		return err
	}

	actorName := "Unknown User"
	var actor database.StudentProfile
	if err := h.db.WithContext(ctx).First(&actor, payload.ActorProfileID).Error; err == nil {
		actorName = actor.FullName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("query actor profile failed", slog.Any("error", err))
		return err
	}

	notify := ForumNotifyMessage{
		Type:      "forum",
		Event:     payload.Event,
		PostID:    payload.PostID,
		PostTitle: post.Title,
		ReplyID:   payload.ReplyID,
		ActorName: actorName,
	}
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	channel := fmt.Sprintf("user_notify:%d", payload.TargetProfileID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}

	log.Info("forum notification delivered")
	return nil
}
