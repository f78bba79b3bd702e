package model

// Subscription 观众订阅创作者
type Subscription struct {
	ViewerID  uint64 `gorm:"primaryKey;autoIncrement:false" json:"viewer_id"`
	CreatorID uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"creator_id"`
	Timestamps

	Viewer  *User `gorm:"foreignKey:ViewerID;constraint:OnDelete:CASCADE" json:"-"`
	Creator *User `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
}
