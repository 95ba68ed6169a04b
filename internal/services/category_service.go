package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/slug"
	"github.com/gmattworld/applibry-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var categorySlugs = slug.NewResolver("categories", "slug")

type CategoryService struct {
	db    *gorm.DB
	assoc *association.Manager
	store storage.Store
}

func NewCategoryService(db *gorm.DB, assoc *association.Manager, store storage.Store) *CategoryService {
	return &CategoryService{db: db, assoc: assoc, store: store}
}

func (s *CategoryService) List(ctx context.Context, search string, off listing.Offset) (listing.Result[models.Category], error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).Scopes(listing.Search("name", search))
	return paginate[models.Category](q, off, "name ASC")
}

// Public lists the active categories shown to visitors.
func (s *CategoryService) Public(ctx context.Context, search string, off listing.Offset) (listing.Result[models.Category], error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("is_active = ? AND is_deleted = ?", true, false).
		Scopes(listing.Search("name", search))
	return paginate[models.Category](q, off, "name ASC")
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return findByID[models.Category](ctx, s.db, id, "Category")
}

func (s *CategoryService) Create(ctx context.Context, actor *uuid.UUID, req *dto.CreateCategoryRequest) (*models.Category, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	icon, err := s.store.Put(ctx, req.Icon)
	if err != nil {
		return nil, err
	}

	category := models.Category{Name: name, Description: req.Description, Icon: icon}
	category.Touch(actor)

	err = slug.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ensureUniqueName(tx, &models.Category{}, "Category", name, nil); err != nil {
				return err
			}
			resolved, err := categorySlugs.Resolve(ctx, tx, name, nil)
			if err != nil {
				return err
			}
			category.ID = uuid.Nil
			category.Slug = resolved
			return tx.Create(&category).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, category.ID)
}

func (s *CategoryService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	var name, icon string
	if req.Name != nil {
		var err error
		if name, err = normalizeName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Icon != nil {
		var err error
		if icon, err = s.store.Put(ctx, *req.Icon); err != nil {
			return nil, err
		}
	}

	var category models.Category
	err := slug.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&category, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Category")
				}
				return err
			}
			req.ApplyTo(&category)
			if req.Name != nil && name != category.Name {
				if err := ensureUniqueName(tx, &models.Category{}, "Category", name, &category.ID); err != nil {
					return err
				}
				resolved, err := categorySlugs.Resolve(ctx, tx, name, &category.ID)
				if err != nil {
					return err
				}
				category.Name, category.Slug = name, resolved
			}
			if req.Icon != nil {
				category.Icon = icon
			}
			category.Touch(actor)
			return tx.Save(&category).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) ToggleStatus(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.Category, error) {
	return toggleActive[models.Category](ctx, s.db, id, "Category", actor)
}

// Delete refuses while apps still reference the category. User preferences
// pointing at it are dropped.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Category{}, id, "Category"); err != nil {
			return err
		}
		var apps int64
		if err := tx.Model(&models.App{}).Where("category_id = ?", id).Count(&apps).Error; err != nil {
			return fmt.Errorf("count category apps: %w", err)
		}
		if apps > 0 {
			return apperr.Conflict("Category still has apps")
		}
		if err := s.assoc.DetachTarget(tx, association.UserCategories, id); err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, "id = ?", id).Error
	})
}
