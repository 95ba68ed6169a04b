package models

type Category struct {
	Base
	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug        string `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:200" json:"icon"`
	AppCount    int    `gorm:"default:0" json:"app_count"`
	Subscribers int    `gorm:"default:0" json:"subscribers"`
}
