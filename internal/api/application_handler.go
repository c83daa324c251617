package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"careernavigator/internal/api/middleware"
	"careernavigator/internal/database"
)

// 求职申请的合法状态流转。
var applicationStatuses = map[string]bool{
	"saved":        true,
	"applied":      true,
	"interviewing": true,
	"offer":        true,
	"rejected":     true,
}

// ApplicationHandler 管理求职申请记录。
type ApplicationHandler struct {
	db *gorm.DB
}

// NewApplicationHandler 构造求职申请处理器。
func NewApplicationHandler(db *gorm.DB) *ApplicationHandler {
	return &ApplicationHandler{db: db}
}

// ListApplications 返回当前档案的申请记录，可按状态过滤。
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	query := h.db.WithContext(c.Request.Context()).
		Where("profile_id = ?", profileID).
		Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		if !applicationStatuses[status] {
			BadRequest(c, "unknown status")
			return
		}
		query = query.Where("status = ?", status)
	}

	applications := []database.JobApplication{}
	if err := query.Find(&applications).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list applications failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

type applicationRequest struct {
	Company  string `json:"company" binding:"required,max=255"`
	Position string `json:"position" binding:"required,max=255"`
	Status   string `json:"status" binding:"required"`
	Notes    string `json:"notes"`
}

// CreateApplication 新增一条申请记录。状态为 applied 时记录申请时间。
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !applicationStatuses[req.Status] {
		BadRequest(c, "unknown status")
		return
	}

	app := database.JobApplication{
		ProfileID: profileID,
		Company:   req.Company,
		Position:  req.Position,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if req.Status != "saved" {
		now := time.Now()
		app.AppliedAt = &now
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&app).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create application failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusCreated, app)
}

// UpdateApplication 更新申请记录。首次离开 saved 状态时补记申请时间。
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !applicationStatuses[req.Status] {
		BadRequest(c, "unknown status")
		return
	}

	ctx := c.Request.Context()
	var app database.JobApplication
	if err := h.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		First(&app).Error; err != nil {
		NotFound(c, "application not found")
		return
	}

	fields := map[string]any{
		"company":  req.Company,
		"position": req.Position,
		"status":   req.Status,
		"notes":    req.Notes,
	}
	if app.AppliedAt == nil && req.Status != "saved" {
		fields["applied_at"] = time.Now()
	}

	if err := h.db.WithContext(ctx).Model(&app).Updates(fields).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update application failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, app)
}

// DeleteApplication 删除一条申请记录。
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(&database.JobApplication{})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete application failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "application not found")
		return
	}
	c.Status(http.StatusNoContent)
}
