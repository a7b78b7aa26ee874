package model

import "time"

// CompletionRecord 完成记录，(user_id, content_slug) 唯一
// 集合语义而不是事件日志：重复通过只覆盖 completed_at，不新增行
type CompletionRecord struct {
	BaseModel
	UserID      uint        `gorm:"not null;uniqueIndex:idx_user_content" json:"userId"`
	ContentSlug string      `gorm:"size:100;not null;uniqueIndex:idx_user_content" json:"contentSlug"`
	ContentType ContentKind `gorm:"size:20;not null" json:"contentType"`
	CompletedAt time.Time   `gorm:"not null" json:"completedAt"`
	Success     *bool       `json:"success,omitempty"`
}

func (CompletionRecord) TableName() string {
	return "completion_records"
}
