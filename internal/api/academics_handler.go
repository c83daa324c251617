package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"careernavigator/internal/academics"
	"careernavigator/internal/api/middleware"
	"careernavigator/internal/database"
)

// AcademicsHandler 暴露学期绩点接口。CGPA 从不落库，每次响应现算。
type AcademicsHandler struct {
	service *academics.Service
}

// NewAcademicsHandler 构造学期处理器。
func NewAcademicsHandler(service *academics.Service) *AcademicsHandler {
	return &AcademicsHandler{service: service}
}

type semestersResponse struct {
	Semesters []database.Semester `json:"semesters"`
	CGPA      float64             `json:"cgpa"`
}

// ListSemesters 返回全部学期及推导出的 CGPA。
func (h *AcademicsHandler) ListSemesters(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	semesters, err := h.service.List(c.Request.Context(), profileID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list semesters failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, semestersResponse{
		Semesters: semesters,
		CGPA:      academics.CGPA(semesters),
	})
}

type addSemesterRequest struct {
	SemesterName string  `json:"semester_name" binding:"required,max=128"`
	SGPA         float64 `json:"sgpa"`
}

// AddSemester 新增学期并返回更新后的列表与 CGPA。
func (h *AcademicsHandler) AddSemester(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req addSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if _, err := h.service.Add(ctx, profileID, req.SemesterName, req.SGPA); err != nil {
		if errors.Is(err, academics.ErrInvalidSGPA) {
			BadRequest(c, err.Error())
			return
		}
		middleware.LoggerFromContext(c).Error("add semester failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	semesters, err := h.service.List(ctx, profileID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list semesters failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusCreated, semestersResponse{
		Semesters: semesters,
		CGPA:      academics.CGPA(semesters),
	})
}

// DeleteSemester 删除一个学期。
func (h *AcademicsHandler) DeleteSemester(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), profileID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "semester not found")
			return
		}
		middleware.LoggerFromContext(c).Error("delete semester failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}
