package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careernavigator/internal/api/middleware"
	"careernavigator/internal/database"
)

var themes = map[string]bool{"system": true, "light": true, "dark": true}
var fontSizes = map[string]bool{"small": true, "medium": true, "large": true}

// PreferencesHandler 管理每个档案的界面偏好（主题与无障碍开关）。
type PreferencesHandler struct {
	db *gorm.DB
}

// NewPreferencesHandler 构造偏好处理器。
func NewPreferencesHandler(db *gorm.DB) *PreferencesHandler {
	return &PreferencesHandler{db: db}
}

// GetPreferences 返回偏好。尚未保存过时返回默认值，而不是 404。
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var prefs database.UserPreferences
	err := h.db.WithContext(c.Request.Context()).
		Where("profile_id = ?", profileID).
		First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, database.UserPreferences{
			ProfileID: profileID,
			Theme:     "system",
			FontSize:  "medium",
		})
		return
	}
	if err != nil {
		middleware.LoggerFromContext(c).Error("load preferences failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

type preferencesRequest struct {
	Theme        string `json:"theme" binding:"required"`
	FontSize     string `json:"font_size" binding:"required"`
	HighContrast bool   `json:"high_contrast"`
	ReduceMotion bool   `json:"reduce_motion"`
	ScreenReader bool   `json:"screen_reader"`
}

// SavePreferences 按 profile_id 冲突键 upsert 偏好。
func (h *PreferencesHandler) SavePreferences(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !themes[req.Theme] {
		BadRequest(c, "unknown theme")
		return
	}
	if !fontSizes[req.FontSize] {
		BadRequest(c, "unknown font size")
		return
	}

	prefs := database.UserPreferences{
		ProfileID:    profileID,
		Theme:        req.Theme,
		FontSize:     req.FontSize,
		HighContrast: req.HighContrast,
		ReduceMotion: req.ReduceMotion,
		ScreenReader: req.ScreenReader,
	}

	err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"theme", "font_size", "high_contrast", "reduce_motion", "screen_reader", "updated_at",
			}),
		}).
		Create(&prefs).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("save preferences failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, prefs)
}
