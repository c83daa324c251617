package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"careernavigator/internal/api/middleware"
	"careernavigator/internal/profile"
)

// ProfileHandler 暴露档案聚合读与局部更新接口。
type ProfileHandler struct {
	aggregator *profile.Aggregator
}

// NewProfileHandler 构造档案处理器。
func NewProfileHandler(aggregator *profile.Aggregator) *ProfileHandler {
	return &ProfileHandler{aggregator: aggregator}
}

// GetProfile 返回档案本体及全部子集合。
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	agg, err := h.aggregator.Load(c.Request.Context(), profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "profile not found")
			return
		}
		middleware.LoggerFromContext(c).Error("load profile failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, agg)
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name"`
	University  *string `json:"university"`
	Major       *string `json:"major"`
	Year        *string `json:"year"`
	GPA         *string `json:"gpa"`
	Bio         *string `json:"bio"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"date_of_birth"`
	StudentID   *string `json:"student_id"`
}

// fields 只收集请求里真正出现的键，缺省字段不会被清空。
func (r updateProfileRequest) fields() map[string]any {
	out := map[string]any{}
	set := func(column string, value *string) {
		if value != nil {
			out[column] = *value
		}
	}
	set("full_name", r.FullName)
	set("university", r.University)
	set("major", r.Major)
	set("year", r.Year)
	set("gpa", r.GPA)
	set("bio", r.Bio)
	set("email", r.Email)
	set("phone", r.Phone)
	set("address", r.Address)
	set("date_of_birth", r.DateOfBirth)
	set("student_id", r.StudentID)
	return out
}

// UpdateProfile 局部更新档案字段并返回更新后的完整聚合。
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	agg, err := h.aggregator.Update(c.Request.Context(), profileID, req.fields())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "profile not found")
			return
		}
		middleware.LoggerFromContext(c).Error("update profile failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, agg)
}
