package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/cursor"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LibraryService manages a user's saved apps and preferred categories.
// Both listings are ordered newest first, ties broken by name.
type LibraryService struct {
	db    *gorm.DB
	assoc *association.Manager
}

func NewLibraryService(db *gorm.DB, assoc *association.Manager) *LibraryService {
	return &LibraryService{db: db, assoc: assoc}
}

func (s *LibraryService) AddApp(ctx context.Context, userID, appID uuid.UUID) error {
	return s.assoc.Add(ctx, association.UserApps, userID, appID)
}

func (s *LibraryService) RemoveApp(ctx context.Context, userID, appID uuid.UUID) error {
	return s.assoc.Remove(ctx, association.UserApps, userID, appID)
}

func (s *LibraryService) AddCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	return s.assoc.Add(ctx, association.UserCategories, userID, categoryID)
}

func (s *LibraryService) RemoveCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	return s.assoc.Remove(ctx, association.UserCategories, userID, categoryID)
}

// recentKey is the sort position of one link row.
type recentKey struct {
	ID      uuid.UUID
	Name    string
	AddedAt time.Time
}

func recentCursor(k recentKey) string {
	return cursor.EncodeCompound(k.AddedAt, k.Name)
}

// recentKeys pages through link rows joined to their target, newest first.
func (s *LibraryService) recentKeys(ctx context.Context, link association.Link, userID uuid.UUID, p listing.Params) (listing.Page[recentKey], error) {
	limit := listing.NormalizeLimit(p.Limit)
	createdAt := link.Table + ".created_at"
	name := link.TargetTable + ".name"

	after, err := listing.AfterRecent(createdAt, name, p.Cursor)
	if err != nil {
		return listing.Page[recentKey]{}, err
	}

	var keys []recentKey
	err = s.db.WithContext(ctx).Table(link.Table).
		Select(link.TargetTable+".id AS id, "+name+" AS name, "+createdAt+" AS added_at").
		Joins("JOIN "+link.TargetTable+" ON "+link.TargetTable+".id = "+link.Table+"."+link.TargetColumn).
		Where(link.Table+"."+link.OwnerColumn+" = ?", userID).
		Scopes(listing.Search(name, p.Search), after).
		Order(createdAt + " DESC").
		Order(name + " ASC").
		Limit(limit + 1).
		Scan(&keys).Error
	if err != nil {
		return listing.Page[recentKey]{}, fmt.Errorf("list %s: %w", link.Table, err)
	}
	return listing.Trim(keys, limit, recentCursor), nil
}

// Library lists the user's saved apps.
func (s *LibraryService) Library(ctx context.Context, userID uuid.UUID, p listing.Params) (listing.Page[dto.LibraryApp], error) {
	keys, err := s.recentKeys(ctx, association.UserApps, userID, p)
	if err != nil {
		return listing.Page[dto.LibraryApp]{}, err
	}

	byID := make(map[uuid.UUID]models.App, len(keys.Items))
	if len(keys.Items) > 0 {
		var apps []models.App
		err := s.db.WithContext(ctx).
			Preload("Category").Preload("Tags").Preload("Platforms").
			Where("id IN ?", keyIDs(keys.Items)).
			Find(&apps).Error
		if err != nil {
			return listing.Page[dto.LibraryApp]{}, fmt.Errorf("load library apps: %w", err)
		}
		for _, a := range apps {
			byID[a.ID] = a
		}
	}

	items := make([]dto.LibraryApp, 0, len(keys.Items))
	for _, k := range keys.Items {
		if app, ok := byID[k.ID]; ok {
			items = append(items, dto.LibraryApp{App: app, AddedAt: k.AddedAt})
		}
	}
	return listing.Page[dto.LibraryApp]{Items: items, NextCursor: keys.NextCursor}, nil
}

// Preferences lists the user's preferred categories.
func (s *LibraryService) Preferences(ctx context.Context, userID uuid.UUID, p listing.Params) (listing.Page[dto.PreferredCategory], error) {
	keys, err := s.recentKeys(ctx, association.UserCategories, userID, p)
	if err != nil {
		return listing.Page[dto.PreferredCategory]{}, err
	}

	byID := make(map[uuid.UUID]models.Category, len(keys.Items))
	if len(keys.Items) > 0 {
		var categories []models.Category
		if err := s.db.WithContext(ctx).Where("id IN ?", keyIDs(keys.Items)).Find(&categories).Error; err != nil {
			return listing.Page[dto.PreferredCategory]{}, fmt.Errorf("load preferred categories: %w", err)
		}
		for _, c := range categories {
			byID[c.ID] = c
		}
	}

	items := make([]dto.PreferredCategory, 0, len(keys.Items))
	for _, k := range keys.Items {
		if category, ok := byID[k.ID]; ok {
			items = append(items, dto.PreferredCategory{Category: category, AddedAt: k.AddedAt})
		}
	}
	return listing.Page[dto.PreferredCategory]{Items: items, NextCursor: keys.NextCursor}, nil
}

func keyIDs(keys []recentKey) []uuid.UUID {
	ids := make([]uuid.UUID, len(keys))
	for i, k := range keys {
		ids[i] = k.ID
	}
	return ids
}
