package model

import (
	"time"
)

// 由于gorm的基本结构中ID是uint类型，我想都统一成uint64，所以自己搞了个base结构体
// 不带DeletedAt：删除就是真删，外键上的ON DELETE CASCADE才能生效
type BaseModel struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// 关联表没有自增ID，只需要时间戳
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// All 需要迁移的全部模型，顺序保证被引用的表先建
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Video{},
		&Comment{},
		&CommentReaction{},
		&VideoReaction{},
		&Subscription{},
		&Playlist{},
		&PlaylistVideo{},
		&VideoView{},
		&MuxWebhookEvent{},
	}
}
