package dto

import "github.com/gmattworld/applibry-api/internal/models"

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// UpdateCategoryRequest is a partial update. Name and Icon are handled by the
// service because they need slug resolution and storage.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

func (r *UpdateCategoryRequest) ApplyTo(c *models.Category) {
	if r.Description != nil {
		c.Description = *r.Description
	}
}

// NamedRequest creates a tag or a platform.
type NamedRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type UpdateNamedRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

func (r *UpdateNamedRequest) ApplyToTag(t *models.Tag) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
}

func (r *UpdateNamedRequest) ApplyToPlatform(p *models.Platform) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
}
