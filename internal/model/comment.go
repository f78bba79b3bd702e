package model

type Comment struct {
	BaseModel
	VideoID uint64 `gorm:"not null;index" json:"video_id"` // index索引，极大地加速基于该列的查询、过滤和排序操作
	UserID  uint64 `gorm:"not null;index" json:"user_id"`
	// 指针*uint64的零值是nil，这样就可以区分是一级评论还是回复；只允许一层回复
	ParentID *uint64 `gorm:"index" json:"parent_id"`
	Value    string  `gorm:"type:text;not null" json:"value"`

	User    User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Video   *Video    `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}
