package model

type Playlist struct {
	BaseModel
	UserID      uint64  `gorm:"not null;index" json:"user_id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// PlaylistVideo 播放列表和视频的多对多关联，UpdatedAt就是加入时间
type PlaylistVideo struct {
	PlaylistID uint64 `gorm:"primaryKey;autoIncrement:false" json:"playlist_id"`
	VideoID    uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"video_id"`
	Timestamps

	Playlist *Playlist `gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE" json:"-"`
	Video    *Video    `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}
