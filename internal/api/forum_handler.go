package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"careernavigator/internal/api/middleware"
	"careernavigator/internal/database"
	"careernavigator/internal/forum"
	"careernavigator/internal/tasks"
)

// ForumHandler 暴露讨论区接口：发帖、浏览、回复与采纳答案。
type ForumHandler struct {
	db          *gorm.DB
	coordinator *forum.Coordinator
	asynqClient *asynq.Client
}

// NewForumHandler 构造论坛处理器。asynqClient 可为 nil（不投递通知）。
func NewForumHandler(db *gorm.DB, coordinator *forum.Coordinator, asynqClient *asynq.Client) *ForumHandler {
	return &ForumHandler{
		db:          db,
		coordinator: coordinator,
		asynqClient: asynqClient,
	}
}

// ListPosts 返回帖子列表，最新在前。
func (h *ForumHandler) ListPosts(c *gin.Context) {
	views, err := h.coordinator.ListPosts(c.Request.Context())
	if err != nil {
		middleware.LoggerFromContext(c).Error("list posts failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": views})
}

type createPostRequest struct {
	Title   string   `json:"title" binding:"required,max=255"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags" binding:"max=10,dive,max=64"`
}

// CreatePost 新建帖子。
func (h *ForumHandler) CreatePost(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	post, err := h.coordinator.CreatePost(c.Request.Context(), profileID, req.Title, req.Content, req.Tags)
	if err != nil {
		middleware.LoggerFromContext(c).Error("create post failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost 返回帖子详情及回复列表，并原子自增浏览数。
// 自增在读取之前执行，详情里看到的 views 已含本次浏览。
func (h *ForumHandler) GetPost(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	if err := h.coordinator.IncrementViews(ctx, postID); err != nil {
		logger.Warn("increment views failed", slog.Any("error", err))
	}

	view, err := h.coordinator.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "post not found")
			return
		}
		logger.Error("load post failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	replies, err := h.coordinator.ListReplies(ctx, postID)
	if err != nil {
		logger.Error("list replies failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":    view,
		"replies": replies,
	})
}

type createReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateReply 回复帖子，并向帖子作者投递通知任务。
func (h *ForumHandler) CreateReply(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	reply, err := h.coordinator.CreateReply(ctx, postID, profileID, req.Content)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "post not found")
			return
		}
		logger.Error("create reply failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.enqueueNotify(c, tasks.ForumNotifyPayload{
		Event:           forum.EventReplyCreated,
		PostID:          postID,
		ReplyID:         reply.ID,
		ActorProfileID:  profileID,
		TargetProfileID: h.postAuthorID(c, postID),
	})

	c.JSON(http.StatusCreated, reply)
}

// AcceptAnswer 采纳一条回复为答案，并通知被采纳的回复作者。
func (h *ForumHandler) AcceptAnswer(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	replyID, err := strconv.ParseUint(c.Param("replyID"), 10, 32)
	if err != nil || replyID == 0 {
		BadRequest(c, "invalid reply id")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	if err := h.coordinator.AcceptAnswer(ctx, postID, uint(replyID), profileID); err != nil {
		switch {
		case errors.Is(err, forum.ErrNotPostAuthor):
			Forbidden(c, err.Error())
		case errors.Is(err, forum.ErrReplyNotInPost):
			BadRequest(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			NotFound(c, "post or reply not found")
		default:
			logger.Error("accept answer failed", slog.Any("error", err))
			Internal(c, "internal error")
		}
		return
	}

	var reply database.ForumReply
	if err := h.db.WithContext(ctx).First(&reply, uint(replyID)).Error; err == nil {
		h.enqueueNotify(c, tasks.ForumNotifyPayload{
			Event:           forum.EventAnswerAccepted,
			PostID:          postID,
			ReplyID:         uint(replyID),
			ActorProfileID:  profileID,
			TargetProfileID: reply.AuthorProfileID,
		})
	}

	c.Status(http.StatusOK)
}

// postAuthorID 查帖子作者，失败时返回 0（通知会被静默丢弃）。
func (h *ForumHandler) postAuthorID(c *gin.Context, postID uint) uint {
	var post database.ForumPost
	if err := h.db.WithContext(c.Request.Context()).
		Select("id", "author_profile_id").
		First(&post, postID).Error; err != nil {
		middleware.LoggerFromContext(c).Warn("load post author failed", slog.Any("error", err))
		return 0
	}
	return post.AuthorProfileID
}

// enqueueNotify 投递论坛通知任务。失败只记日志，不影响主流程。
func (h *ForumHandler) enqueueNotify(c *gin.Context, payload tasks.ForumNotifyPayload) {
	if h.asynqClient == nil || payload.TargetProfileID == 0 {
		return
	}
	task, err := tasks.NewForumNotifyTask(payload)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("build forum notify task failed", slog.Any("error", err))
		return
	}
	if _, err := h.asynqClient.EnqueueContext(c.Request.Context(), task, asynq.MaxRetry(2)); err != nil {
		middleware.LoggerFromContext(c).Warn("enqueue forum notify task failed", slog.Any("error", err))
	}
}
