package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"careernavigator/internal/resume"
)

// SaveFunc 执行一次真正的草稿落库（按 profile_id upsert）。
type SaveFunc func(ctx context.Context, profileID uint, data resume.Data) error

const saveTimeout = 10 * time.Second

// Controller 为每个档案维护一个尾随去抖计时器：
// 停止编辑满一个时间窗后才触发保存，窗口内的多次修改折叠为
// 最后一次（latest wins）。
type Controller struct {
	mu       sync.Mutex
	interval time.Duration
	save     SaveFunc
	logger   *slog.Logger
	entries  map[uint]*entry
	closed   bool
}

type entry struct {
	timer     *time.Timer
	pending   resume.Data
	hasPend   bool
	saving    bool
	lastSaved time.Time
}

// Status 汇报某档案的自动保存状态。
type Status struct {
	Saving      bool      `json:"saving"`
	LastSavedAt time.Time `json:"last_saved_at"`
}

// NewController 构造自动保存控制器。
func NewController(interval time.Duration, save SaveFunc, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		interval: interval,
		save:     save,
		logger:   logger,
		entries:  map[uint]*entry{},
	}
}

// Notify 记录最新草稿并（重新）启动该档案的去抖计时器。
func (c *Controller) Notify(profileID uint, data resume.Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	e, ok := c.entries[profileID]
	if !ok {
		e = &entry{}
		c.entries[profileID] = e
	}
	e.pending = data
	e.hasPend = true

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(c.interval, func() {
		c.fire(profileID)
	})
}

// Flush 立即保存该档案的待写草稿（若有），不等计时器。
func (c *Controller) Flush(profileID uint) {
	c.mu.Lock()
	e, ok := c.entries[profileID]
	if ok && e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	c.mu.Unlock()
	if ok {
		c.fire(profileID)
	}
}

// Status 返回该档案的保存状态。
func (c *Controller) Status(profileID uint) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[profileID]
	if !ok {
		return Status{}
	}
	return Status{Saving: e.saving, LastSavedAt: e.lastSaved}
}

// Close 停掉全部计时器。尽力而为：已在途的保存不会被打断。
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, e := range c.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
}

func (c *Controller) fire(profileID uint) {
	c.mu.Lock()
	e, ok := c.entries[profileID]
	if !ok || !e.hasPend || e.saving {
		// saving 时到期的计时器直接放弃：Notify 会再排新的。
		c.mu.Unlock()
		return
	}
	data := e.pending
	e.hasPend = false
	e.saving = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	err := c.save(ctx, profileID, data)

	c.mu.Lock()
	e.saving = false
	if err == nil {
		e.lastSaved = time.Now()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("autosave resume draft failed",
			slog.Uint64("profile_id", uint64(profileID)),
			slog.Any("error", err),
		)
	}
}
