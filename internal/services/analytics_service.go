package services

import (
	"context"
	"fmt"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var statModels = map[string]interface{}{
	"apps":        &models.App{},
	"categories":  &models.Category{},
	"tags":        &models.Tag{},
	"platforms":   &models.Platform{},
	"roles":       &models.Role{},
	"permissions": &models.Permission{},
	"users":       &models.User{},
}

type AnalyticsService struct {
	db    *gorm.DB
	assoc *association.Manager
}

func NewAnalyticsService(db *gorm.DB, assoc *association.Manager) *AnalyticsService {
	return &AnalyticsService{db: db, assoc: assoc}
}

// Dashboard summarises the caller's own activity. Interactions and
// submissions are not tracked yet and report zero.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error) {
	db := s.db.WithContext(ctx)
	var resp dto.DashboardResponse
	if err := db.Model(&models.UserApp{}).Where("user_id = ?", userID).Count(&resp.LibraryCount).Error; err != nil {
		return nil, fmt.Errorf("count library: %w", err)
	}
	if err := db.Model(&models.UserCategory{}).Where("user_id = ?", userID).Count(&resp.PreferenceCount).Error; err != nil {
		return nil, fmt.Errorf("count preferences: %w", err)
	}
	return &resp, nil
}

func (s *AnalyticsService) Stats(ctx context.Context, entity string) (*dto.EntityStats, error) {
	model, ok := statModels[entity]
	if !ok {
		return nil, apperr.InvalidFilter("Unknown entity " + entity)
	}
	db := s.db.WithContext(ctx)
	stats := dto.EntityStats{Entity: entity}
	if err := db.Model(model).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", entity, err)
	}
	if err := db.Model(model).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, fmt.Errorf("count active %s: %w", entity, err)
	}
	stats.Inactive = stats.Total - stats.Active
	return &stats, nil
}

func (s *AnalyticsService) Recount(ctx context.Context) (*dto.RecountResponse, error) {
	n, err := s.assoc.Recount(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RecountResponse{RowsUpdated: n}, nil
}
