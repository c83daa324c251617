package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"careernavigator/internal/api/middleware"
	"careernavigator/internal/database"
)

// ChildrenHandler 管理档案下的技能、课程、项目与证书条目。
type ChildrenHandler struct {
	db *gorm.DB
}

// NewChildrenHandler 构造子集合处理器。
func NewChildrenHandler(db *gorm.DB) *ChildrenHandler {
	return &ChildrenHandler{db: db}
}

func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// deleteScoped 删除属于当前档案的一条子记录。model 必须是指向具体模型的指针。
func (h *ChildrenHandler) deleteScoped(c *gin.Context, model any) {
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
		Delete(model)
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete child record failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "record not found")
		return
	}
	c.Status(http.StatusNoContent)
}

type skillRequest struct {
	Name  string `json:"name" binding:"required,max=128"`
	Level string `json:"level" binding:"max=32"`
}

// CreateSkill 新增一项技能。
func (h *ChildrenHandler) CreateSkill(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	skill := database.Skill{ProfileID: profileID, Name: req.Name, Level: req.Level}
	if err := h.db.WithContext(c.Request.Context()).Create(&skill).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create skill failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusCreated, skill)
}

// UpdateSkill 更新一项技能。
func (h *ChildrenHandler) UpdateSkill(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Skill{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Updates(map[string]any{"name": req.Name, "level": req.Level})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update skill failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "record not found")
		return
	}
	c.Status(http.StatusOK)
}

// DeleteSkill 删除一项技能。
func (h *ChildrenHandler) DeleteSkill(c *gin.Context) {
	h.deleteScoped(c, &database.Skill{})
}

type courseRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Code    string `json:"code" binding:"max=64"`
	Grade   string `json:"grade" binding:"max=16"`
	Credits int    `json:"credits" binding:"gte=0,lte=60"`
}

// CreateCourse 新增一门课程。
func (h *ChildrenHandler) CreateCourse(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	course := database.Course{
		ProfileID: profileID,
		Name:      req.Name,
		Code:      req.Code,
		Grade:     req.Grade,
		Credits:   req.Credits,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&course).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create course failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusCreated, course)
}

// UpdateCourse 更新一门课程。
func (h *ChildrenHandler) UpdateCourse(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Course{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Updates(map[string]any{
			"name":    req.Name,
			"code":    req.Code,
			"grade":   req.Grade,
			"credits": req.Credits,
		})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update course failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "record not found")
		return
	}
	c.Status(http.StatusOK)
}

// DeleteCourse 删除一门课程。
func (h *ChildrenHandler) DeleteCourse(c *gin.Context) {
	h.deleteScoped(c, &database.Course{})
}

type projectRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Link        string `json:"link" binding:"omitempty,url,max=512"`
}

// CreateProject 新增一个项目经历。
func (h *ChildrenHandler) CreateProject(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	project := database.Project{
		ProfileID:   profileID,
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&project).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create project failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject 更新一个项目经历。
func (h *ChildrenHandler) UpdateProject(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Project{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Updates(map[string]any{
			"title":       req.Title,
			"description": req.Description,
			"link":        req.Link,
		})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update project failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "record not found")
		return
	}
	c.Status(http.StatusOK)
}

// DeleteProject 删除一个项目经历。
func (h *ChildrenHandler) DeleteProject(c *gin.Context) {
	h.deleteScoped(c, &database.Project{})
}

type certificationRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Issuer   string `json:"issuer" binding:"max=255"`
	IssuedAt string `json:"issued_at" binding:"max=32"`
}

// CreateCertification 新增一项证书。
func (h *ChildrenHandler) CreateCertification(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req certificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	cert := database.Certification{
		ProfileID: profileID,
		Name:      req.Name,
		Issuer:    req.Issuer,
		IssuedAt:  req.IssuedAt,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&cert).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create certification failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// UpdateCertification 更新一项证书。
func (h *ChildrenHandler) UpdateCertification(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req certificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Certification{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Updates(map[string]any{
			"name":      req.Name,
			"issuer":    req.Issuer,
			"issued_at": req.IssuedAt,
		})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update certification failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "record not found")
		return
	}
	c.Status(http.StatusOK)
}

// DeleteCertification 删除一项证书。
func (h *ChildrenHandler) DeleteCertification(c *gin.Context) {
	h.deleteScoped(c, &database.Certification{})
}
