package events

import (
	"time"

	"github.com/Xushengqwer/blog_service/models/vo"
)

// 博客服务对外投递的 Kafka 事件。
// 事件只携带下游需要的字段，不直接序列化数据库实体。

// PostData 帖子事件中的核心数据。
type PostData struct {
	PostID     uint64    `json:"post_id"`
	Title      string    `json:"title"`
	AuthorName string    `json:"author_name"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostCreatedEvent 帖子创建事件。
type PostCreatedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Post      PostData  `json:"post"`
}

// PostDeletedEvent 帖子删除事件。下游据此同步删除其持有的派生数据。
type PostDeletedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	PostID    uint64    `json:"post_id"`
}

// SweepCompletedEvent 附件清扫完成事件，携带完整报告供审计。
type SweepCompletedEvent struct {
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
	Report    vo.SweepReportVO `json:"report"`
}
