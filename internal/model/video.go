package model

const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"

	// 刚创建直传上传、还没收到Mux回调时的状态
	MuxStatusWaiting = "waiting"
)

// Video 视频元数据，转码相关字段由Mux的webhook回填
type Video struct {
	BaseModel
	UserID      uint64  `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint64 `gorm:"index" json:"category_id"`
	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
	Visibility  string  `gorm:"type:varchar(16);not null;default:private;index" json:"visibility"`

	// Mux的各个ID都可能为空，用指针才能让多个NULL共存于唯一索引
	MuxStatus      *string `gorm:"type:varchar(32)" json:"mux_status"`
	MuxAssetID     *string `gorm:"type:varchar(128);uniqueIndex" json:"mux_asset_id"`
	MuxUploadID    *string `gorm:"type:varchar(128);uniqueIndex" json:"mux_upload_id"`
	MuxPlaybackID  *string `gorm:"type:varchar(128);uniqueIndex" json:"mux_playback_id"`
	MuxTrackID     *string `gorm:"type:varchar(128);uniqueIndex" json:"mux_track_id"`
	MuxTrackStatus *string `gorm:"type:varchar(32)" json:"mux_track_status"`

	ThumbnailURL *string `gorm:"type:varchar(512)" json:"thumbnail_url"`
	ThumbnailKey *string `gorm:"type:varchar(255)" json:"thumbnail_key"`
	PreviewURL   *string `gorm:"type:varchar(512)" json:"preview_url"`
	PreviewKey   *string `gorm:"type:varchar(255)" json:"preview_key"`
	// 毫秒
	Duration int64 `gorm:"not null;default:0" json:"duration"`

	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
}

func (v *Video) IsPublic() bool {
	return v.Visibility == VisibilityPublic
}

// ObjectKeys 视频在对象存储里的全部文件，删除视频时一并清理
func (v *Video) ObjectKeys() []string {
	var keys []string
	if v.ThumbnailKey != nil && *v.ThumbnailKey != "" {
		keys = append(keys, *v.ThumbnailKey)
	}
	if v.PreviewKey != nil && *v.PreviewKey != "" {
		keys = append(keys, *v.PreviewKey)
	}
	return keys
}
