package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the audit shape shared by every catalog entity.
type Base struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	IsActive    bool       `gorm:"default:true;index" json:"is_active"`
	IsDeleted   bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedByID *uuid.UUID `gorm:"type:uuid" json:"deleted_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedAt   time.Time  `json:"last_updated_at"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"last_updated_by_id,omitempty"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Touch records the acting user. A nil actor leaves the audit columns alone.
func (b *Base) Touch(actor *uuid.UUID) {
	if actor == nil {
		return
	}
	if b.CreatedByID == nil {
		b.CreatedByID = actor
	}
	b.UpdatedByID = actor
}

// Lookup is the minimal projection used by selection widgets.
type Lookup struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
