package dto

import (
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
)

type CreateAppRequest struct {
	Name              string      `json:"name" validate:"required,max=255"`
	Description       string      `json:"description"`
	Brief             string      `json:"brief" validate:"required"`
	Price             float64     `json:"price" validate:"gte=0"`
	Website           string      `json:"website" validate:"omitempty,url,max=255"`
	MetaTitle         string      `json:"meta_title" validate:"max=255"`
	MetaKeywords      string      `json:"meta_keywords" validate:"max=255"`
	MetaDescription   string      `json:"meta_description"`
	Icon              string      `json:"icon"`
	Banner            string      `json:"banner"`
	Status            string      `json:"status" validate:"omitempty,oneof=Draft Published 'Pending Review'"`
	PricingModel      string      `json:"pricing_model" validate:"omitempty,oneof=Free Freemium Paid Enterprise"`
	Trending          bool        `json:"trending"`
	APIAvailable      bool        `json:"api_available"`
	IntegrationGuide  string      `json:"integration_guide"`
	DocumentationLink string      `json:"documentation_link" validate:"omitempty,url,max=255"`
	CategoryID        uuid.UUID   `json:"category_id" validate:"required"`
	Tags              []uuid.UUID `json:"tags"`
	Platforms         []uuid.UUID `json:"platforms"`
}

// ToModel copies the plain fields. Name, slug, media and relations are set by
// the service.
func (r *CreateAppRequest) ToModel() models.App {
	app := models.App{
		Description:       r.Description,
		Brief:             r.Brief,
		Price:             r.Price,
		Website:           r.Website,
		MetaTitle:         r.MetaTitle,
		MetaKeywords:      r.MetaKeywords,
		MetaDescription:   r.MetaDescription,
		Status:            models.AppStatus(r.Status),
		PricingModel:      models.PricingModel(r.PricingModel),
		Trending:          r.Trending,
		APIAvailable:      r.APIAvailable,
		IntegrationGuide:  r.IntegrationGuide,
		DocumentationLink: r.DocumentationLink,
		CategoryID:        r.CategoryID,
	}
	if app.Status == "" {
		app.Status = models.AppStatusDraft
	}
	if app.PricingModel == "" {
		app.PricingModel = models.PricingFree
	}
	return app
}

// UpdateAppRequest is a partial update; nil fields keep their value. Tags and
// Platforms replace the current set when present.
type UpdateAppRequest struct {
	Name              *string      `json:"name" validate:"omitempty,min=1,max=255"`
	Description       *string      `json:"description"`
	Brief             *string      `json:"brief" validate:"omitempty,min=1"`
	Price             *float64     `json:"price" validate:"omitempty,gte=0"`
	Website           *string      `json:"website" validate:"omitempty,url,max=255"`
	MetaTitle         *string      `json:"meta_title" validate:"omitempty,max=255"`
	MetaKeywords      *string      `json:"meta_keywords" validate:"omitempty,max=255"`
	MetaDescription   *string      `json:"meta_description"`
	Icon              *string      `json:"icon"`
	Banner            *string      `json:"banner"`
	Status            *string      `json:"status" validate:"omitempty,oneof=Draft Published 'Pending Review'"`
	PricingModel      *string      `json:"pricing_model" validate:"omitempty,oneof=Free Freemium Paid Enterprise"`
	Trending          *bool        `json:"trending"`
	APIAvailable      *bool        `json:"api_available"`
	IntegrationGuide  *string      `json:"integration_guide"`
	DocumentationLink *string      `json:"documentation_link" validate:"omitempty,url,max=255"`
	CategoryID        *uuid.UUID   `json:"category_id"`
	Tags              *[]uuid.UUID `json:"tags"`
	Platforms         *[]uuid.UUID `json:"platforms"`
}

// ApplyTo merges the plain fields into app.
func (r *UpdateAppRequest) ApplyTo(app *models.App) {
	if r.Description != nil {
		app.Description = *r.Description
	}
	if r.Brief != nil {
		app.Brief = *r.Brief
	}
	if r.Price != nil {
		app.Price = *r.Price
	}
	if r.Website != nil {
		app.Website = *r.Website
	}
	if r.MetaTitle != nil {
		app.MetaTitle = *r.MetaTitle
	}
	if r.MetaKeywords != nil {
		app.MetaKeywords = *r.MetaKeywords
	}
	if r.MetaDescription != nil {
		app.MetaDescription = *r.MetaDescription
	}
	if r.Status != nil {
		app.Status = models.AppStatus(*r.Status)
	}
	if r.PricingModel != nil {
		app.PricingModel = models.PricingModel(*r.PricingModel)
	}
	if r.Trending != nil {
		app.Trending = *r.Trending
	}
	if r.APIAvailable != nil {
		app.APIAvailable = *r.APIAvailable
	}
	if r.IntegrationGuide != nil {
		app.IntegrationGuide = *r.IntegrationGuide
	}
	if r.DocumentationLink != nil {
		app.DocumentationLink = *r.DocumentationLink
	}
}
