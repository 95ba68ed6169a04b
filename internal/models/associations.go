package models

import (
	"time"

	"github.com/google/uuid"
)

// UserApp is a user's library entry.
type UserApp struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	AppID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"index"`
}

// UserCategory is a user's category preference.
type UserCategory struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"index"`
}

type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt    time.Time
}
