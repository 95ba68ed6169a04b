package models

import (
	"time"

	"github.com/google/uuid"
)

type AppStatus string

const (
	AppStatusDraft         AppStatus = "Draft"
	AppStatusPublished     AppStatus = "Published"
	AppStatusPendingReview AppStatus = "Pending Review"
)

func (s AppStatus) Valid() bool {
	switch s {
	case AppStatusDraft, AppStatusPublished, AppStatusPendingReview:
		return true
	}
	return false
}

type PricingModel string

const (
	PricingFree       PricingModel = "Free"
	PricingFreemium   PricingModel = "Freemium"
	PricingPaid       PricingModel = "Paid"
	PricingEnterprise PricingModel = "Enterprise"
)

func (p PricingModel) Valid() bool {
	switch p {
	case PricingFree, PricingFreemium, PricingPaid, PricingEnterprise:
		return true
	}
	return false
}

type App struct {
	Base
	Name              string       `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug              string       `gorm:"size:500;not null;uniqueIndex" json:"slug"`
	Description       string       `gorm:"type:text" json:"description"`
	Brief             string       `gorm:"type:text" json:"brief"`
	Trending          bool         `gorm:"default:false;index" json:"trending"`
	Website           string       `gorm:"size:255" json:"website"`
	Icon              string       `gorm:"type:text" json:"icon"`
	Banner            string       `gorm:"type:text" json:"banner"`
	MetaTitle         string       `gorm:"size:255" json:"meta_title"`
	MetaDescription   string       `gorm:"type:text" json:"meta_description"`
	MetaKeywords      string       `gorm:"size:255" json:"meta_keywords"`
	Status            AppStatus    `gorm:"size:20;default:'Draft';index" json:"status"`
	PublishedAt       *time.Time   `json:"published_at"`
	PricingModel      PricingModel `gorm:"size:20;default:'Free';not null" json:"pricing_model"`
	Price             float64      `json:"price"`
	APIAvailable      bool         `gorm:"default:false" json:"api_available"`
	IntegrationGuide  string       `gorm:"type:text" json:"integration_guide"`
	DocumentationLink string       `gorm:"size:255" json:"documentation_link"`

	Ratings     float64 `gorm:"default:0" json:"ratings"`
	Reviews     int     `gorm:"default:0" json:"reviews"`
	Subscribers int     `gorm:"default:0" json:"subscribers"`
	Shares      int     `gorm:"default:0" json:"shares"`
	Rank        int     `gorm:"default:0" json:"rank"`

	CategoryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags       []Tag      `gorm:"many2many:app_tags" json:"tags"`
	Platforms  []Platform `gorm:"many2many:app_platforms" json:"platforms"`
}
