package forum

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"careernavigator/internal/database"
)

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&database.StudentProfile{},
		&database.ForumPost{},
		&database.ForumReply{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPostWithReplies(t *testing.T, c *Coordinator, authorID uint, replyAuthors ...uint) (*database.ForumPost, []*database.ForumReply) {
	t.Helper()
	ctx := context.Background()
	post, err := c.CreatePost(ctx, authorID, "How to prepare for interviews?", "Any tips?", []string{"career", "interviews"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	replies := make([]*database.ForumReply, 0, len(replyAuthors))
	for _, ra := range replyAuthors {
		reply, err := c.CreateReply(ctx, post.ID, ra, "practice a lot")
		if err != nil {
			t.Fatalf("create reply: %v", err)
		}
		replies = append(replies, reply)
	}
	return post, replies
}

func TestAcceptAnswerExclusivity(t *testing.T) {
	db := newTestDB(t)
	c := NewCoordinator(db, nil, nil)
	ctx := context.Background()

	post, replies := seedPostWithReplies(t, c, 1, 2, 3, 4)

	if err := c.AcceptAnswer(ctx, post.ID, replies[1].ID, 1); err != nil {
		t.Fatalf("accept answer: %v", err)
	}
	// 再采纳另一条：旧的必须被清掉。
	if err := c.AcceptAnswer(ctx, post.ID, replies[2].ID, 1); err != nil {
		t.Fatalf("accept second answer: %v", err)
	}

	var accepted []database.ForumReply
	if err := db.Where("post_id = ? AND is_accepted_answer = ?", post.ID, true).Find(&accepted).Error; err != nil {
		t.Fatalf("query accepted: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("expected exactly one accepted reply, got %d", len(accepted))
	}
	if accepted[0].ID != replies[2].ID {
		t.Fatalf("accepted reply = %d, want %d", accepted[0].ID, replies[2].ID)
	}

	var reloaded database.ForumPost
	if err := db.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if !reloaded.IsAnswered {
		t.Fatal("post should be marked answered")
	}
}

func TestAcceptAnswerRejectsNonAuthor(t *testing.T) {
	db := newTestDB(t)
	c := NewCoordinator(db, nil, nil)

	post, replies := seedPostWithReplies(t, c, 1, 2)

	err := c.AcceptAnswer(context.Background(), post.ID, replies[0].ID, 99)
	if !errors.Is(err, ErrNotPostAuthor) {
		t.Fatalf("error = %v, want ErrNotPostAuthor", err)
	}

	var reloaded database.ForumReply
	if err := db.First(&reloaded, replies[0].ID).Error; err != nil {
		t.Fatalf("reload reply: %v", err)
	}
	if reloaded.IsAcceptedAnswer {
		t.Fatal("reply must not be accepted by non-author")
	}
}

func TestAcceptAnswerRejectsForeignReply(t *testing.T) {
	db := newTestDB(t)
	c := NewCoordinator(db, nil, nil)

	postA, _ := seedPostWithReplies(t, c, 1)
	_, repliesB := seedPostWithReplies(t, c, 1, 2)

	err := c.AcceptAnswer(context.Background(), postA.ID, repliesB[0].ID, 1)
	if !errors.Is(err, ErrReplyNotInPost) {
		t.Fatalf("error = %v, want ErrReplyNotInPost", err)
	}
}

func TestListRepliesOrdersAcceptedFirst(t *testing.T) {
	db := newTestDB(t)
	c := NewCoordinator(db, nil, nil)
	ctx := context.Background()

	post, replies := seedPostWithReplies(t, c, 1, 2, 3, 4)
	if err := c.AcceptAnswer(ctx, post.ID, replies[2].ID, 1); err != nil {
		t.Fatalf("accept answer: %v", err)
	}

	views, err := c.ListReplies(ctx, post.ID)
	if err != nil {
		t.Fatalf("list replies: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("got %d replies, want 3", len(views))
	}
	if views[0].ID != replies[2].ID {
		t.Fatalf("accepted reply must come first, got %d", views[0].ID)
	}
	if views[1].ID != replies[0].ID || views[2].ID != replies[1].ID {
		t.Fatalf("remaining replies must keep creation order: %d, %d", views[1].ID, views[2].ID)
	}
}

func TestIncrementViewsIsCumulative(t *testing.T) {
	db := newTestDB(t)
	c := NewCoordinator(db, nil, nil)
	ctx := context.Background()

	post, _ := seedPostWithReplies(t, c, 1)
	for i := 0; i < 5; i++ {
		if err := c.IncrementViews(ctx, post.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	var reloaded database.ForumPost
	if err := db.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Views != 5 {
		t.Fatalf("views = %d, want 5", reloaded.Views)
	}
}

func TestListPostsResolvesAuthorsWithPlaceholder(t *testing.T) {
	db := newTestDB(t)
	c := NewCoordinator(db, nil, nil)
	ctx := context.Background()

	author := database.StudentProfile{UserID: 1, FullName: "Jane Doe", AvatarKey: "user-assets/1/a.png"}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}

	seedPostWithReplies(t, c, author.ID, author.ID, author.ID)
	seedPostWithReplies(t, c, 999) // 作者档案不存在

	posts, err := c.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}

	byAuthor := map[uint]PostView{}
	for _, p := range posts {
		byAuthor[p.AuthorProfileID] = p
	}

	orphan := byAuthor[999]
	if orphan.Author.Name != "Unknown User" {
		t.Fatalf("missing profile should resolve to placeholder, got %q", orphan.Author.Name)
	}
	owned := byAuthor[author.ID]
	if owned.Author.Name != "Jane Doe" {
		t.Fatalf("author name = %q, want Jane Doe", owned.Author.Name)
	}
	if owned.ReplyCount != 2 {
		t.Fatalf("reply count = %d, want 2", owned.ReplyCount)
	}
	if len(owned.TagList) != 2 || owned.TagList[0] != "career" {
		t.Fatalf("tags = %v", owned.TagList)
	}
}

func TestEventsPublishedOnWrites(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	c := NewCoordinator(db, pub, nil)
	ctx := context.Background()

	post, replies := seedPostWithReplies(t, c, 1, 2)
	if err := c.AcceptAnswer(ctx, post.ID, replies[0].ID, 1); err != nil {
		t.Fatalf("accept answer: %v", err)
	}

	if len(pub.events) != 3 {
		t.Fatalf("got %d events, want 3", len(pub.events))
	}
	if pub.events[0].Type != EventPostCreated ||
		pub.events[1].Type != EventReplyCreated ||
		pub.events[2].Type != EventAnswerAccepted {
		t.Fatalf("unexpected event sequence: %+v", pub.events)
	}
}
