package model

const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

func IsValidReaction(t string) bool {
	return t == ReactionLike || t == ReactionDislike
}

// 用户对视频的反应，联合主键保证一个用户对一个视频只有一条
type VideoReaction struct {
	UserID  uint64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	VideoID uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"video_id"`
	Type    string `gorm:"type:varchar(16);not null" json:"type"`
	Timestamps

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Video *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

type CommentReaction struct {
	CommentID uint64 `gorm:"primaryKey;autoIncrement:false" json:"comment_id"`
	UserID    uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	Type      string `gorm:"type:varchar(16);not null" json:"type"`
	Timestamps

	Comment *Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
