package services

import (
	"context"
	"fmt"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/models"
	"gorm.io/gorm"
)

var lookupTables = map[string]string{
	"category":   "categories",
	"tag":        "tags",
	"platform":   "platforms",
	"role":       "roles",
	"permission": "permissions",
}

type LookupService struct {
	db *gorm.DB
}

func NewLookupService(db *gorm.DB) *LookupService {
	return &LookupService{db: db}
}

// Lookup returns the id/name projection of active rows of kind.
func (s *LookupService) Lookup(ctx context.Context, kind string) ([]models.Lookup, error) {
	table, ok := lookupTables[kind]
	if !ok {
		return nil, apperr.InvalidFilter("Unknown lookup type " + kind)
	}
	items := []models.Lookup{}
	err := s.db.WithContext(ctx).Table(table).
		Select("id, name").
		Where("is_active = ? AND is_deleted = ?", true, false).
		Order("name ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", kind, err)
	}
	return items, nil
}
