package profile

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"careernavigator/internal/database"
)

// Aggregate 聚合档案本体与全部子集合。
// 子集合始终为非 nil 切片：抓取失败会退化为空列表而不是让整次加载失败。
type Aggregate struct {
	Profile         database.StudentProfile   `json:"profile"`
	Skills          []database.Skill          `json:"skills"`
	Courses         []database.Course         `json:"courses"`
	Projects        []database.Project        `json:"projects"`
	JobApplications []database.JobApplication `json:"job_applications"`
	Certifications  []database.Certification  `json:"certifications"`
}

// Aggregator 负责档案聚合读与局部更新。
type Aggregator struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewAggregator 构造档案聚合器。
func NewAggregator(db *gorm.DB, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{db: db, logger: logger}
}

// Load 并发读取档案行与五个子集合，全部请求落定后才返回。
// 错误处理是不对称的：档案本体读取失败会使整次加载失败；
// 子集合读取失败只记日志并退化为空列表。
func (a *Aggregator) Load(ctx context.Context, profileID uint) (*Aggregate, error) {
	agg := &Aggregate{
		Skills:          []database.Skill{},
		Courses:         []database.Course{},
		Projects:        []database.Project{},
		JobApplications: []database.JobApplication{},
		Certifications:  []database.Certification{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.db.WithContext(gctx).First(&agg.Profile, profileID).Error; err != nil {
			return fmt.Errorf("load profile %d: %w", profileID, err)
		}
		return nil
	})

	g.Go(childLoader(gctx, a, profileID, "skills", &agg.Skills))
	g.Go(childLoader(gctx, a, profileID, "courses", &agg.Courses))
	g.Go(childLoader(gctx, a, profileID, "projects", &agg.Projects))
	g.Go(childLoader(gctx, a, profileID, "job_applications", &agg.JobApplications))
	g.Go(childLoader(gctx, a, profileID, "certifications", &agg.Certifications))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return agg, nil
}

// childLoader 返回一个读取子集合的闭包。失败被吞掉并置空，不向上传播。
func childLoader[T any](ctx context.Context, a *Aggregator, profileID uint, name string, dst *[]T) func() error {
	return func() error {
		var rows []T
		if err := a.db.WithContext(ctx).
			Where("profile_id = ?", profileID).
			Order("created_at ASC").
			Find(&rows).Error; err != nil {
			a.logger.Warn("load profile child collection failed, defaulting to empty",
				slog.String("collection", name),
				slog.Uint64("profile_id", uint64(profileID)),
				slog.Any("error", err),
			)
			*dst = []T{}
			return nil
		}
		if rows == nil {
			rows = []T{}
		}
		*dst = rows
		return nil
	}
}

// Update 只写入给定字段，然后重新执行完整 Load 以对账。
// fields 的键为数据库列名。
func (a *Aggregator) Update(ctx context.Context, profileID uint, fields map[string]any) (*Aggregate, error) {
	if len(fields) == 0 {
		return a.Load(ctx, profileID)
	}

	if err := a.db.WithContext(ctx).
		Model(&database.StudentProfile{}).
		Where("id = ?", profileID).
		Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("update profile %d: %w", profileID, err)
	}

	return a.Load(ctx, profileID)
}
