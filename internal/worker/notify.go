package worker

// 统一的 WebSocket 消息协议（通过 Redis Pub/Sub 转发给前端）。
// 注意：这里的字段名与前端解析保持一致。
type ResumeExportNotifyMessage struct {
	Type          string `json:"type"`
	Status        string `json:"status"`
	ProfileID     uint   `json:"profile_id"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}

// ForumNotifyMessage 推送给帖子作者的论坛事件。
type ForumNotifyMessage struct {
	Type      string `json:"type"`
	Event     string `json:"event"`
	PostID    uint   `json:"post_id"`
	PostTitle string `json:"post_title"`
	ReplyID   uint   `json:"reply_id,omitempty"`
	ActorName string `json:"actor_name"`
}
