package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"careernavigator/internal/database"
	"careernavigator/internal/errcode"
	"careernavigator/internal/pdf"
	"careernavigator/internal/resume"
	"careernavigator/internal/storage"
	"careernavigator/internal/tasks"
)

// ResumeExportTaskHandler 负责消费简历 PDF 导出任务。
type ResumeExportTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient redis.UniversalClient
	logger      *slog.Logger
}

// NewResumeExportTaskHandler 创建任务处理器。
func NewResumeExportTaskHandler(
	db *gorm.DB,
	storage *storage.Client,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
) *ResumeExportTaskHandler {
	return &ResumeExportTaskHandler{
		db:          db,
		storage:     storage,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ResumeExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ResumeExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("profile_id", uint64(payload.ProfileID)),
	)
	log.Info("Starting resume PDF export task...")

	var row database.Resume
	if err := h.db.WithContext(ctx).Where("profile_id = ?", payload.ProfileID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("resume not found, skipping task")
			return nil
		}
		log.Error("query resume failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		if err := h.db.WithContext(ctx).Model(&row).
			Update("pdf_status", database.PdfStatusFailed).Error; err != nil {
			log.Error("mark export failed", slog.Any("error", err))
		}
		notify := ResumeExportNotifyMessage{
			Type:          "resume_export",
			Status:        "error",
			ProfileID:     payload.ProfileID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishNotify(ctx, payload.ProfileID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	data, err := resume.Decode(row)
	if err != nil {
		log.Error("decode resume document failed", slog.Any("error", err))
		return err
	}

	htmlContent, err := renderResumeHTML(data)
	if err != nil {
		log.Error("render resume html failed", slog.Any("error", err))
		return err
	}

	pdfBytes, err := pdf.GeneratePDFFromHTML(htmlContent)
	if err != nil {
		log.Error("generate pdf failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("generated-resumes/%d/%s.pdf", payload.ProfileID, uuid.NewString())
	reader := bytes.NewReader(pdfBytes)
	if _, err := h.storage.UploadFile(ctx, objectName, reader, int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	// 覆盖旧文件的引用；旧对象按生命周期策略清理。
	update := map[string]any{
		"pdf_key":    objectName,
		"pdf_status": database.PdfStatusCompleted,
	}
	if err := h.db.WithContext(ctx).Model(&row).Updates(update).Error; err != nil {
		log.Error("update resume failed", slog.Any("error", err))
		return err
	}

	notify := ResumeExportNotifyMessage{
		Type:          "resume_export",
		Status:        "completed",
		ProfileID:     payload.ProfileID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if err := h.publishNotify(ctx, payload.ProfileID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("Resume export task completed successfully.")
	return nil
}

func (h *ResumeExportTaskHandler) publishNotify(ctx context.Context, profileID uint, notify ResumeExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", profileID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
