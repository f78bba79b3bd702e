package model

// VideoView 每个用户对每个视频只记一条，重复观看只刷新UpdatedAt
type VideoView struct {
	UserID  uint64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	VideoID uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"video_id"`
	Timestamps

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Video *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}
