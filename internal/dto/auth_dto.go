package dto

import (
	"time"

	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"first_name" validate:"max=50"`
	LastName    string `json:"last_name" validate:"max=50"`
	AccountType string `json:"account_type" validate:"omitempty,oneof=STARTER PRO ENTERPRISE"`
}

type RegisterResponse struct {
	PublicKey string `json:"public_key"`
	Email     string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type VerifyAccountRequest struct {
	PublicKey string `json:"public_key" validate:"required"`
	Code      string `json:"code" validate:"required,len=8,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=8,numeric"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=8,numeric"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID                     uuid.UUID          `json:"id"`
	Username               string             `json:"username"`
	Email                  string             `json:"email"`
	FirstName              string             `json:"first_name"`
	LastName               string             `json:"last_name"`
	PhoneNumber            string             `json:"phone_number"`
	Profession             string             `json:"profession"`
	Country                string             `json:"country"`
	AccountType            models.AccountType `json:"account_type"`
	IsAdmin                bool               `json:"is_admin"`
	IsActive               bool               `json:"is_active"`
	IsVerified             bool               `json:"is_verified"`
	IsPreferenceConfigured bool               `json:"is_preference_configured"`
	Role                   *RoleSummary       `json:"role,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
}

type RoleSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Permissions []string  `json:"permissions"`
}

func NewUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:                     u.ID,
		Username:               u.Username,
		Email:                  u.Email,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		PhoneNumber:            u.PhoneNumber,
		Profession:             u.Profession,
		Country:                u.Country,
		AccountType:            u.AccountType,
		IsAdmin:                u.IsAdmin,
		IsActive:               u.IsActive,
		IsVerified:             u.IsVerified,
		IsPreferenceConfigured: u.IsPreferenceConfigured,
		CreatedAt:              u.CreatedAt,
	}
	if u.Role != nil {
		codes := make([]string, 0, len(u.Role.Permissions))
		for _, p := range u.Role.Permissions {
			codes = append(codes, p.Code)
		}
		resp.Role = &RoleSummary{ID: u.Role.ID, Name: u.Role.Name, Code: u.Role.Code, Permissions: codes}
	}
	return resp
}
