package dto

import (
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
)

type CreateRoleRequest struct {
	Name          string      `json:"name" validate:"required,max=100"`
	Description   string      `json:"description"`
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}

type UpdateRoleRequest struct {
	Name          *string      `json:"name" validate:"omitempty,min=1,max=100"`
	Description   *string      `json:"description"`
	PermissionIDs *[]uuid.UUID `json:"permission_ids"`
}

func (r *UpdateRoleRequest) ApplyTo(role *models.Role) {
	if r.Description != nil {
		role.Description = *r.Description
	}
}

type CreatePermissionRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Module      string `json:"module" validate:"omitempty,oneof=core apps categories tags platforms access users analytics integrations"`
}

type UpdatePermissionRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Module      *string `json:"module" validate:"omitempty,oneof=core apps categories tags platforms access users analytics integrations"`
}

func (r *UpdatePermissionRequest) ApplyTo(p *models.Permission) {
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Module != nil {
		p.Module = models.Module(*r.Module)
	}
}
