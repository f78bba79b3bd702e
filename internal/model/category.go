package model

type Category struct {
	BaseModel
	Name        string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
}
