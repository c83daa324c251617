package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeResumeExport = "resume:export"
	TypeForumNotify  = "forum:notify"
)

// ResumeExportPayload 描述生成简历 PDF 所需的最小信息。
type ResumeExportPayload struct {
	ProfileID     uint   `json:"profile_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewResumeExportTask 构造一个新的简历 PDF 导出任务。
func NewResumeExportTask(profileID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ResumeExportPayload{
		ProfileID:     profileID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumeExport, payload), nil
}

// ForumNotifyPayload 描述一条需要投递给帖子作者的论坛通知。
type ForumNotifyPayload struct {
	Event           string `json:"event"`
	PostID          uint   `json:"post_id"`
	ReplyID         uint   `json:"reply_id,omitempty"`
	ActorProfileID  uint   `json:"actor_profile_id"`
	TargetProfileID uint   `json:"target_profile_id"`
}

// NewForumNotifyTask 构造一个论坛通知投递任务。
func NewForumNotifyTask(p ForumNotifyPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeForumNotify, payload), nil
}
