package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountStarter    AccountType = "STARTER"
	AccountPro        AccountType = "PRO"
	AccountEnterprise AccountType = "ENTERPRISE"
)

func (a AccountType) Valid() bool {
	switch a {
	case AccountStarter, AccountPro, AccountEnterprise:
		return true
	}
	return false
}

type User struct {
	Base
	Username               string      `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email                  string      `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password               string      `gorm:"size:512" json:"-"`
	PublicKey              string      `gorm:"size:100;uniqueIndex" json:"-"`
	VerificationCode       string      `gorm:"size:512" json:"-"`
	VerificationExpiresAt  *time.Time  `json:"-"`
	PasswordResetCode      string      `gorm:"size:512" json:"-"`
	PasswordResetExpiresAt *time.Time  `json:"-"`
	PasswordResetRequested bool        `gorm:"default:false" json:"-"`
	FirstName              string      `gorm:"size:50" json:"first_name"`
	LastName               string      `gorm:"size:50;index" json:"last_name"`
	PhoneNumber            string      `gorm:"size:20" json:"phone_number"`
	Profession             string      `gorm:"size:100" json:"profession"`
	Country                string      `gorm:"size:100" json:"country"`
	IsAdmin                bool        `gorm:"default:false" json:"is_admin"`
	AccountType            AccountType `gorm:"size:20;default:'STARTER'" json:"account_type"`
	IsVerified             bool        `gorm:"default:false" json:"is_verified"`
	IsVerifiedAt           *time.Time  `json:"is_verified_at"`
	IsPreferenceConfigured bool        `gorm:"default:false" json:"is_preference_configured"`
	RoleID                 *uuid.UUID  `gorm:"type:uuid;index" json:"role_id"`
	Role                   *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}
