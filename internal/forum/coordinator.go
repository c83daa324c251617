package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"careernavigator/internal/database"
)

// 找不到作者档案时使用的占位展示信息。
const (
	unknownAuthorName = "Unknown User"
	defaultAvatarKey  = ""
)

// ErrNotPostAuthor 表示调用者不是帖子作者，无权采纳回答。
var ErrNotPostAuthor = errors.New("only the post author may accept an answer")

// ErrReplyNotInPost 表示目标回复不属于该帖子。
var ErrReplyNotInPost = errors.New("reply does not belong to post")

// Author 是贴在帖子/回复上的非规范化作者展示数据。
type Author struct {
	ProfileID uint   `json:"profile_id"`
	Name      string `json:"name"`
	AvatarKey string `json:"avatar_key"`
}

// PostView 帖子及其派生展示字段。
type PostView struct {
	database.ForumPost
	Author     Author   `json:"author"`
	TagList    []string `json:"tag_list"`
	ReplyCount int64    `json:"reply_count"`
}

// ReplyView 回复及其作者展示数据。
type ReplyView struct {
	database.ForumReply
	Author Author `json:"author"`
}

// Coordinator 负责论坛数据的读写编排与事件广播。
type Coordinator struct {
	db     *gorm.DB
	events EventPublisher
	logger *slog.Logger
}

// NewCoordinator 构造论坛协调器。events 可为 nil（不广播）。
func NewCoordinator(db *gorm.DB, events EventPublisher, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{db: db, events: events, logger: logger}
}

// CreatePost 新建帖子并广播变更。
func (c *Coordinator) CreatePost(ctx context.Context, authorProfileID uint, title, content string, tags []string) (*database.ForumPost, error) {
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	post := database.ForumPost{
		AuthorProfileID: authorProfileID,
		Title:           title,
		Content:         content,
		Tags:            datatypes.JSON(rawTags),
	}
	if err := c.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	c.publish(ctx, Event{Type: EventPostCreated, PostID: post.ID, ActorProfileID: authorProfileID})
	return &post, nil
}

// ListPosts 返回全部帖子，最新在前，并为每条帖子解析作者展示数据与回复数。
// 作者查询按请求内去重缓存；档案缺失退化为占位作者，不让整个列表失败。
func (c *Coordinator) ListPosts(ctx context.Context) ([]PostView, error) {
	var posts []database.ForumPost
	if err := c.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	authors := map[uint]Author{}
	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		view := PostView{
			ForumPost: post,
			Author:    c.resolveAuthor(ctx, authors, post.AuthorProfileID),
			TagList:   decodeTags(post.Tags),
		}

		if err := c.db.WithContext(ctx).
			Model(&database.ForumReply{}).
			Where("post_id = ?", post.ID).
			Count(&view.ReplyCount).Error; err != nil {
			c.logger.Warn("count replies failed",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.Any("error", err),
			)
		}

		views = append(views, view)
	}
	return views, nil
}

// GetPost 返回单个帖子视图。
func (c *Coordinator) GetPost(ctx context.Context, postID uint) (*PostView, error) {
	var post database.ForumPost
	if err := c.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return nil, fmt.Errorf("load post %d: %w", postID, err)
	}

	view := PostView{
		ForumPost: post,
		Author:    c.resolveAuthor(ctx, map[uint]Author{}, post.AuthorProfileID),
		TagList:   decodeTags(post.Tags),
	}
	if err := c.db.WithContext(ctx).
		Model(&database.ForumReply{}).
		Where("post_id = ?", post.ID).
		Count(&view.ReplyCount).Error; err != nil {
		c.logger.Warn("count replies failed",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.Any("error", err),
		)
	}
	return &view, nil
}

// IncrementViews 在数据库侧原子自增浏览数（UPDATE ... SET views = views + 1）。
// 不做读-改-写，因此并发选中同一帖子不会丢失计数。
func (c *Coordinator) IncrementViews(ctx context.Context, postID uint) error {
	if err := c.db.WithContext(ctx).
		Model(&database.ForumPost{}).
		Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return fmt.Errorf("increment views for post %d: %w", postID, err)
	}
	return nil
}

// ListReplies 返回帖子的全部回复：已采纳的在前，其余按创建时间升序。
func (c *Coordinator) ListReplies(ctx context.Context, postID uint) ([]ReplyView, error) {
	var replies []database.ForumReply
	if err := c.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("is_accepted_answer DESC, created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("list replies for post %d: %w", postID, err)
	}

	authors := map[uint]Author{}
	views := make([]ReplyView, 0, len(replies))
	for _, reply := range replies {
		views = append(views, ReplyView{
			ForumReply: reply,
			Author:     c.resolveAuthor(ctx, authors, reply.AuthorProfileID),
		})
	}
	return views, nil
}

// CreateReply 新建回复并广播变更。
func (c *Coordinator) CreateReply(ctx context.Context, postID, authorProfileID uint, content string) (*database.ForumReply, error) {
	var post database.ForumPost
	if err := c.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return nil, fmt.Errorf("load post %d: %w", postID, err)
	}

	reply := database.ForumReply{
		PostID:          postID,
		AuthorProfileID: authorProfileID,
		Content:         content,
	}
	if err := c.db.WithContext(ctx).Create(&reply).Error; err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}

	c.publish(ctx, Event{Type: EventReplyCreated, PostID: postID, ReplyID: reply.ID, ActorProfileID: authorProfileID})
	return &reply, nil
}

// AcceptAnswer 采纳一条回复为帖子的答案。
// 整个"清空-设置-标记已答"序列在单个事务内执行：事务提交后，
// 该帖子恰有一条回复 is_accepted_answer = true，且帖子 is_answered = true。
// 只有帖子作者可以采纳。
func (c *Coordinator) AcceptAnswer(ctx context.Context, postID, replyID, callerProfileID uint) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post database.ForumPost
		if err := tx.First(&post, postID).Error; err != nil {
			return fmt.Errorf("load post %d: %w", postID, err)
		}
		if post.AuthorProfileID != callerProfileID {
			return ErrNotPostAuthor
		}

		var reply database.ForumReply
		if err := tx.First(&reply, replyID).Error; err != nil {
			return fmt.Errorf("load reply %d: %w", replyID, err)
		}
		if reply.PostID != postID {
			return ErrReplyNotInPost
		}

		if err := tx.Model(&database.ForumReply{}).
			Where("post_id = ?", postID).
			Update("is_accepted_answer", false).Error; err != nil {
			return fmt.Errorf("clear accepted answers: %w", err)
		}
		if err := tx.Model(&database.ForumReply{}).
			Where("id = ?", replyID).
			Update("is_accepted_answer", true).Error; err != nil {
			return fmt.Errorf("mark accepted answer: %w", err)
		}
		if err := tx.Model(&database.ForumPost{}).
			Where("id = ?", postID).
			Update("is_answered", true).Error; err != nil {
			return fmt.Errorf("mark post answered: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ctx, Event{Type: EventAnswerAccepted, PostID: postID, ReplyID: replyID, ActorProfileID: callerProfileID})
	return nil
}

// resolveAuthor 解析作者展示数据，带请求内去重缓存。
func (c *Coordinator) resolveAuthor(ctx context.Context, cache map[uint]Author, profileID uint) Author {
	if author, ok := cache[profileID]; ok {
		return author
	}

	author := Author{ProfileID: profileID, Name: unknownAuthorName, AvatarKey: defaultAvatarKey}
	var p database.StudentProfile
	err := c.db.WithContext(ctx).Select("id", "full_name", "avatar_key").First(&p, profileID).Error
	switch {
	case err == nil:
		if p.FullName != "" {
			author.Name = p.FullName
		}
		author.AvatarKey = p.AvatarKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 档案缺失属于正常情况，使用占位作者。
	default:
		c.logger.Warn("resolve author failed",
			slog.Uint64("profile_id", uint64(profileID)),
			slog.Any("error", err),
		)
	}

	cache[profileID] = author
	return author
}

func (c *Coordinator) publish(ctx context.Context, event Event) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.Warn("publish forum event failed",
			slog.String("type", event.Type),
			slog.Uint64("post_id", uint64(event.PostID)),
			slog.Any("error", err),
		)
	}
}

func decodeTags(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
