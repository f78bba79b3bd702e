package model

type User struct {
	BaseModel        // 包括 ID, CreatedAt, UpdatedAt
	Username  string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Password  string `gorm:"not null" json:"-"`
	ImageURL  string `gorm:"type:varchar(512)" json:"image_url"`
}
