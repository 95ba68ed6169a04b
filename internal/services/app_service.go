package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/cursor"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/slug"
	"github.com/gmattworld/applibry-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var appSlugs = slug.NewResolver("apps", "slug")

type AppService struct {
	db    *gorm.DB
	assoc *association.Manager
	store storage.Store
}

func NewAppService(db *gorm.DB, assoc *association.Manager, store storage.Store) *AppService {
	return &AppService{db: db, assoc: assoc, store: store}
}

// List returns one name-ordered page of apps. viewer is only consulted for
// personalised listings.
func (s *AppService) List(ctx context.Context, viewer *uuid.UUID, p listing.Params) (listing.Page[models.App], error) {
	limit := listing.NormalizeLimit(p.Limit)

	byCategory, err := listing.ByCategory("apps.category_id", p.Category)
	if err != nil {
		return listing.Page[models.App]{}, err
	}
	after, err := listing.After("apps.name", p.Cursor)
	if err != nil {
		return listing.Page[models.App]{}, err
	}

	q := s.db.WithContext(ctx).Model(&models.App{}).
		Scopes(listing.Search("apps.name", p.Search), byCategory, after)
	if p.Trending {
		q = q.Where("apps.trending = ?", true)
	}
	if p.PublishedOnly {
		q = q.Where("apps.status = ? AND apps.is_active = ? AND apps.is_deleted = ?", models.AppStatusPublished, true, false)
	}
	if p.Personalised && viewer != nil {
		personal, err := s.personalised(ctx, *viewer)
		if err != nil {
			return listing.Page[models.App]{}, err
		}
		q = q.Scopes(personal)
	}

	var rows []models.App
	err = q.Preload("Category").Preload("Tags").Preload("Platforms").
		Order("apps.name ASC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return listing.Page[models.App]{}, fmt.Errorf("list apps: %w", err)
	}
	return listing.Trim(rows, limit, func(a models.App) string { return cursor.Encode(a.Name) }), nil
}

// personalised narrows to the viewer's preferred categories and hides apps
// already in their library. Viewers without preferences see everything.
func (s *AppService) personalised(ctx context.Context, userID uuid.UUID) (listing.Scope, error) {
	var prefs int64
	if err := s.db.WithContext(ctx).Model(&models.UserCategory{}).Where("user_id = ?", userID).Count(&prefs).Error; err != nil {
		return nil, fmt.Errorf("count preferences: %w", err)
	}
	if prefs == 0 {
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	}

	preferred := s.db.Model(&models.UserCategory{}).Select("category_id").Where("user_id = ?", userID)
	owned := s.db.Model(&models.UserApp{}).Select("app_id").Where("user_id = ?", userID)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("apps.category_id IN (?)", preferred).Where("apps.id NOT IN (?)", owned)
	}, nil
}

func (s *AppService) Get(ctx context.Context, id uuid.UUID) (*models.App, error) {
	return findByID[models.App](ctx, s.db, id, "App", "Category", "Tags", "Platforms")
}

// GetBySlug backs the public detail page, which only shows published apps.
func (s *AppService) GetBySlug(ctx context.Context, value string) (*models.App, error) {
	var app models.App
	err := s.db.WithContext(ctx).
		Preload("Category").Preload("Tags").Preload("Platforms").
		Where("slug = ? AND status = ? AND is_active = ? AND is_deleted = ?", value, models.AppStatusPublished, true, false).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("App")
		}
		return nil, fmt.Errorf("load app: %w", err)
	}
	return &app, nil
}

func (s *AppService) Create(ctx context.Context, actor *uuid.UUID, req *dto.CreateAppRequest) (*models.App, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	icon, err := s.store.Put(ctx, req.Icon)
	if err != nil {
		return nil, err
	}
	banner, err := s.store.Put(ctx, req.Banner)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = slug.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ensureUniqueName(tx, &models.App{}, "App", name, nil); err != nil {
				return err
			}
			if err := ensureExists(tx, &models.Category{}, req.CategoryID, "Category"); err != nil {
				return err
			}
			tags, err := loadTags(tx, req.Tags)
			if err != nil {
				return err
			}
			platforms, err := loadPlatforms(tx, req.Platforms)
			if err != nil {
				return err
			}

			app := req.ToModel()
			app.Name = name
			app.Icon = icon
			app.Banner = banner
			app.Touch(actor)
			if app.Status == models.AppStatusPublished {
				now := time.Now().UTC()
				app.PublishedAt = &now
			}
			if app.Slug, err = appSlugs.Resolve(ctx, tx, name, nil); err != nil {
				return err
			}

			if err := tx.Omit(clause.Associations).Create(&app).Error; err != nil {
				return err
			}
			if len(tags) > 0 {
				if err := tx.Model(&app).Association("Tags").Append(tags); err != nil {
					return fmt.Errorf("attach tags: %w", err)
				}
			}
			if len(platforms) > 0 {
				if err := tx.Model(&app).Association("Platforms").Append(platforms); err != nil {
					return fmt.Errorf("attach platforms: %w", err)
				}
			}
			id = app.ID
			return incrementAppCount(tx, app.CategoryID)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update applies a partial update. A rename re-resolves the slug and a
// category move shifts one unit of app_count from the old category to the new.
func (s *AppService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req *dto.UpdateAppRequest) (*models.App, error) {
	var name string
	if req.Name != nil {
		var err error
		if name, err = normalizeName(*req.Name); err != nil {
			return nil, err
		}
	}
	var icon, banner string
	if req.Icon != nil {
		var err error
		if icon, err = s.store.Put(ctx, *req.Icon); err != nil {
			return nil, err
		}
	}
	if req.Banner != nil {
		var err error
		if banner, err = s.store.Put(ctx, *req.Banner); err != nil {
			return nil, err
		}
	}

	err := slug.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var app models.App
			if err := tx.First(&app, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("App")
				}
				return err
			}
			wasPublished := app.Status == models.AppStatusPublished
			req.ApplyTo(&app)

			if req.Name != nil && name != app.Name {
				if err := ensureUniqueName(tx, &models.App{}, "App", name, &app.ID); err != nil {
					return err
				}
				resolved, err := appSlugs.Resolve(ctx, tx, name, &app.ID)
				if err != nil {
					return err
				}
				app.Name, app.Slug = name, resolved
			}
			if req.Icon != nil {
				app.Icon = icon
			}
			if req.Banner != nil {
				app.Banner = banner
			}
			if !wasPublished && app.Status == models.AppStatusPublished {
				now := time.Now().UTC()
				app.PublishedAt = &now
			}

			if req.CategoryID != nil && *req.CategoryID != app.CategoryID {
				if err := ensureExists(tx, &models.Category{}, *req.CategoryID, "Category"); err != nil {
					return err
				}
				if err := decrementAppCount(tx, app.CategoryID); err != nil {
					return err
				}
				if err := incrementAppCount(tx, *req.CategoryID); err != nil {
					return err
				}
				app.CategoryID = *req.CategoryID
			}

			app.Touch(actor)
			if err := tx.Omit(clause.Associations).Save(&app).Error; err != nil {
				return err
			}

			if req.Tags != nil {
				tags, err := loadTags(tx, *req.Tags)
				if err != nil {
					return err
				}
				if err := tx.Model(&app).Association("Tags").Replace(tags); err != nil {
					return fmt.Errorf("replace tags: %w", err)
				}
			}
			if req.Platforms != nil {
				platforms, err := loadPlatforms(tx, *req.Platforms)
				if err != nil {
					return err
				}
				if err := tx.Model(&app).Association("Platforms").Replace(platforms); err != nil {
					return fmt.Errorf("replace platforms: %w", err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *AppService) Publish(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.App, error) {
	app, err := findByID[models.App](ctx, s.db, id, "App")
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"status":       models.AppStatusPublished,
		"published_at": time.Now().UTC(),
	}
	if actor != nil {
		updates["updated_by_id"] = *actor
	}
	if err := s.db.WithContext(ctx).Model(app).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("publish app: %w", err)
	}
	return s.Get(ctx, id)
}

// Revert moves the app back to Draft. A draft is returned unchanged.
func (s *AppService) Revert(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.App, error) {
	app, err := findByID[models.App](ctx, s.db, id, "App")
	if err != nil {
		return nil, err
	}
	if app.Status != models.AppStatusDraft {
		updates := map[string]interface{}{"status": models.AppStatusDraft}
		if actor != nil {
			updates["updated_by_id"] = *actor
		}
		if err := s.db.WithContext(ctx).Model(app).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("revert app: %w", err)
		}
	}
	return s.Get(ctx, id)
}

func (s *AppService) ToggleStatus(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.App, error) {
	if _, err := toggleActive[models.App](ctx, s.db, id, "App", actor); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the app with its library entries and relation rows, keeping
// every counter it contributed to in step.
func (s *AppService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.App
		if err := tx.First(&app, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("App")
			}
			return err
		}
		if err := s.assoc.DetachTarget(tx, association.UserApps, app.ID); err != nil {
			return err
		}
		if err := tx.Model(&app).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		if err := tx.Model(&app).Association("Platforms").Clear(); err != nil {
			return fmt.Errorf("clear platforms: %w", err)
		}
		if err := tx.Delete(&app).Error; err != nil {
			return fmt.Errorf("delete app: %w", err)
		}
		return decrementAppCount(tx, app.CategoryID)
	})
}

func incrementAppCount(tx *gorm.DB, categoryID uuid.UUID) error {
	err := tx.Model(&models.Category{}).Where("id = ?", categoryID).
		UpdateColumn("app_count", gorm.Expr("app_count + 1")).Error
	if err != nil {
		return fmt.Errorf("increment app count: %w", err)
	}
	return nil
}

func decrementAppCount(tx *gorm.DB, categoryID uuid.UUID) error {
	err := tx.Model(&models.Category{}).Where("id = ? AND app_count > 0", categoryID).
		UpdateColumn("app_count", gorm.Expr("app_count - 1")).Error
	if err != nil {
		return fmt.Errorf("decrement app count: %w", err)
	}
	return nil
}

func loadTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, apperr.NotFound("Tag")
	}
	return tags, nil
}

func loadPlatforms(tx *gorm.DB, ids []uuid.UUID) ([]models.Platform, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.Platform{}, nil
	}
	var platforms []models.Platform
	if err := tx.Where("id IN ?", ids).Find(&platforms).Error; err != nil {
		return nil, fmt.Errorf("load platforms: %w", err)
	}
	if len(platforms) != len(ids) {
		return nil, apperr.NotFound("Platform")
	}
	return platforms, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
