package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careernavigator/internal/api/middleware"
	"careernavigator/internal/autosave"
	"careernavigator/internal/database"
	"careernavigator/internal/resume"
	"careernavigator/internal/storage"
	"careernavigator/internal/tasks"
)

const downloadLinkTTL = 15 * time.Minute

// ResumeHandler 暴露简历文档的读写、草稿自动保存与 PDF 导出接口。
type ResumeHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	asynqClient *asynq.Client
	autosave    *autosave.Controller
	logger      *slog.Logger
}

// NewResumeHandler 构造简历处理器。
func NewResumeHandler(db *gorm.DB, storageClient *storage.Client, asynqClient *asynq.Client, autosaveController *autosave.Controller, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{
		db:          db,
		storage:     storageClient,
		asynqClient: asynqClient,
		autosave:    autosaveController,
		logger:      logger,
	}
}

type resumeResponse struct {
	Data        resume.Data `json:"data"`
	ResumeScore int         `json:"resume_score"`
	PdfStatus   string      `json:"pdf_status,omitempty"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

// GetResume 返回当前档案的简历。尚未保存过时返回全空文档，而不是 404。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var row database.Resume
	err := h.db.WithContext(c.Request.Context()).
		Where("profile_id = ?", profileID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, resumeResponse{Data: resume.Empty()})
		return
	}
	if err != nil {
		middleware.LoggerFromContext(c).Error("load resume failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	data, err := resume.Decode(row)
	if err != nil {
		middleware.LoggerFromContext(c).Error("decode resume document failed", slog.Any("error", err))
		Internal(c, "stored resume document is corrupt")
		return
	}

	updatedAt := row.UpdatedAt
	c.JSON(http.StatusOK, resumeResponse{
		Data:        data,
		ResumeScore: row.ResumeScore,
		PdfStatus:   row.PdfStatus,
		UpdatedAt:   &updatedAt,
	})
}

// SaveResume 全量保存简历，重算完整度评分并按 profile_id 冲突键 upsert。
func (h *ResumeHandler) SaveResume(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var data resume.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		BadRequest(c, err.Error())
		return
	}

	row := database.Resume{ProfileID: profileID}
	if err := resume.Encode(data, &row); err != nil {
		BadRequest(c, err.Error())
		return
	}

	err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"full_name", "email", "phone", "location", "summary",
				"experience", "education", "skills", "projects",
				"certifications", "languages", "resume_score", "updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("save resume failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, resumeResponse{
		Data:        data,
		ResumeScore: row.ResumeScore,
	})
}

type draftResponse struct {
	Saving      bool       `json:"saving"`
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"`
}

// SaveDraft 接收草稿并交给防抖控制器，立即返回 202。
// 实际落库发生在防抖窗口静默之后，以最后一版草稿为准。
func (h *ResumeHandler) SaveDraft(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var data resume.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		BadRequest(c, err.Error())
		return
	}

	h.autosave.Notify(profileID, data)
	c.JSON(http.StatusAccepted, h.draftStatus(profileID))
}

// DraftStatus 返回草稿保存状态，供前端展示"保存中/已保存"。
func (h *ResumeHandler) DraftStatus(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, h.draftStatus(profileID))
}

func (h *ResumeHandler) draftStatus(profileID uint) draftResponse {
	st := h.autosave.Status(profileID)
	resp := draftResponse{Saving: st.Saving}
	if !st.LastSavedAt.IsZero() {
		saved := st.LastSavedAt
		resp.LastSavedAt = &saved
	}
	return resp
}

// ExportResume 标记导出中并投递后台 PDF 生成任务。
func (h *ResumeHandler) ExportResume(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	// 导出前先把挂起的草稿落库，保证 PDF 是最新内容。
	h.autosave.Flush(profileID)

	var row database.Resume
	if err := h.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "resume not found, save it first")
			return
		}
		logger.Error("load resume failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if err := h.db.WithContext(ctx).Model(&row).
		Update("pdf_status", database.PdfStatusProcessing).Error; err != nil {
		logger.Error("mark resume processing failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewResumeExportTask(profileID, correlationID)
	if err != nil {
		logger.Error("build export task failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if _, err := h.asynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		logger.Error("enqueue export task failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"pdf_status":     database.PdfStatusProcessing,
		"correlation_id": correlationID,
	})
}

// DownloadLink 为已生成的 PDF 签发限时下载链接。
func (h *ResumeHandler) DownloadLink(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var row database.Resume
	if err := h.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&row).Error; err != nil {
		NotFound(c, "resume not found")
		return
	}
	if row.PdfKey == "" || row.PdfStatus != database.PdfStatusCompleted {
		NotFound(c, "pdf not generated yet")
		return
	}

	url, err := h.storage.GeneratePresignedURL(ctx, row.PdfKey, downloadLinkTTL)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate download link failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        url,
		"expires_in": int(downloadLinkTTL.Seconds()),
	})
}
