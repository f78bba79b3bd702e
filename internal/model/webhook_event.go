package model

import (
	"time"

	"gorm.io/datatypes"
)

// MuxWebhookEvent 已处理过的webhook投递，event_id唯一，重放的事件直接跳过
type MuxWebhookEvent struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	EventID   string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"event_id"`
	Type      string         `gorm:"type:varchar(64);not null" json:"type"`
	UploadID  *string        `gorm:"type:varchar(128);index" json:"upload_id"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
