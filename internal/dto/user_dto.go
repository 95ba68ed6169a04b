package dto

import (
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
)

type InviteUserRequest struct {
	Email     string     `json:"email" validate:"required,email,max=100"`
	FirstName string     `json:"first_name" validate:"required,max=50"`
	LastName  string     `json:"last_name" validate:"required,max=50"`
	RoleID    *uuid.UUID `json:"role_id"`
}

// UpdateUserRequest is the admin patch of a user. Nil fields are left alone.
type UpdateUserRequest struct {
	FirstName   *string    `json:"first_name" validate:"omitempty,max=50"`
	LastName    *string    `json:"last_name" validate:"omitempty,max=50"`
	PhoneNumber *string    `json:"phone_number" validate:"omitempty,max=20"`
	Profession  *string    `json:"profession" validate:"omitempty,max=100"`
	Country     *string    `json:"country" validate:"omitempty,max=100"`
	AccountType *string    `json:"account_type" validate:"omitempty,oneof=STARTER PRO ENTERPRISE"`
	IsAdmin     *bool      `json:"is_admin"`
	RoleID      *uuid.UUID `json:"role_id"`
}

// ApplyTo merges the patch into u. RoleID is resolved by the caller.
func (r *UpdateUserRequest) ApplyTo(u *models.User) {
	profile := UpdateProfileRequest{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Profession:  r.Profession,
		Country:     r.Country,
	}
	profile.ApplyTo(u)
	if r.AccountType != nil {
		u.AccountType = models.AccountType(*r.AccountType)
	}
	if r.IsAdmin != nil {
		u.IsAdmin = *r.IsAdmin
	}
}

// UpdateProfileRequest is the self-service profile patch.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=50"`
	LastName    *string `json:"last_name" validate:"omitempty,max=50"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Profession  *string `json:"profession" validate:"omitempty,max=100"`
	Country     *string `json:"country" validate:"omitempty,max=100"`
}

func (r *UpdateProfileRequest) ApplyTo(u *models.User) {
	if r.FirstName != nil {
		u.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		u.LastName = *r.LastName
	}
	if r.PhoneNumber != nil {
		u.PhoneNumber = *r.PhoneNumber
	}
	if r.Profession != nil {
		u.Profession = *r.Profession
	}
	if r.Country != nil {
		u.Country = *r.Country
	}
}
