package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context, search string, off listing.Offset) (listing.Result[models.Tag], error) {
	q := s.db.WithContext(ctx).Model(&models.Tag{}).Scopes(listing.Search("name", search))
	return paginate[models.Tag](q, off, "name ASC")
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	return findByID[models.Tag](ctx, s.db, id, "Tag")
}

func (s *TagService) Create(ctx context.Context, actor *uuid.UUID, req *dto.NamedRequest) (*models.Tag, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	tag := models.Tag{Name: name, Description: req.Description}
	tag.Touch(actor)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, &models.Tag{}, "Tag", name, nil); err != nil {
			return err
		}
		return tx.Create(&tag).Error
	})
	if apperr.IsUniqueViolation(err) {
		return nil, apperr.DuplicateName("Tag")
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tag.ID)
}

func (s *TagService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req *dto.UpdateNamedRequest) (*models.Tag, error) {
	if req.Name != nil {
		name, err := normalizeName(*req.Name)
		if err != nil {
			return nil, err
		}
		req.Name = &name
	}

	var tag models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Tag")
			}
			return err
		}
		if req.Name != nil && *req.Name != tag.Name {
			if err := ensureUniqueName(tx, &models.Tag{}, "Tag", *req.Name, &tag.ID); err != nil {
				return err
			}
		}
		req.ApplyToTag(&tag)
		tag.Touch(actor)
		return tx.Save(&tag).Error
	})
	if apperr.IsUniqueViolation(err) {
		return nil, apperr.DuplicateName("Tag")
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) ToggleStatus(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.Tag, error) {
	return toggleActive[models.Tag](ctx, s.db, id, "Tag", actor)
}

func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Tag{}, id, "Tag"); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM app_tags WHERE tag_id = ?", id).Error; err != nil {
			return fmt.Errorf("detach tag: %w", err)
		}
		return tx.Delete(&models.Tag{}, "id = ?", id).Error
	})
}

type PlatformService struct {
	db *gorm.DB
}

func NewPlatformService(db *gorm.DB) *PlatformService {
	return &PlatformService{db: db}
}

func (s *PlatformService) List(ctx context.Context, search string, off listing.Offset) (listing.Result[models.Platform], error) {
	q := s.db.WithContext(ctx).Model(&models.Platform{}).Scopes(listing.Search("name", search))
	return paginate[models.Platform](q, off, "name ASC")
}

func (s *PlatformService) Get(ctx context.Context, id uuid.UUID) (*models.Platform, error) {
	return findByID[models.Platform](ctx, s.db, id, "Platform")
}

func (s *PlatformService) Create(ctx context.Context, actor *uuid.UUID, req *dto.NamedRequest) (*models.Platform, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	platform := models.Platform{Name: name, Description: req.Description}
	platform.Touch(actor)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, &models.Platform{}, "Platform", name, nil); err != nil {
			return err
		}
		return tx.Create(&platform).Error
	})
	if apperr.IsUniqueViolation(err) {
		return nil, apperr.DuplicateName("Platform")
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, platform.ID)
}

func (s *PlatformService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req *dto.UpdateNamedRequest) (*models.Platform, error) {
	if req.Name != nil {
		name, err := normalizeName(*req.Name)
		if err != nil {
			return nil, err
		}
		req.Name = &name
	}

	var platform models.Platform
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&platform, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Platform")
			}
			return err
		}
		if req.Name != nil && *req.Name != platform.Name {
			if err := ensureUniqueName(tx, &models.Platform{}, "Platform", *req.Name, &platform.ID); err != nil {
				return err
			}
		}
		req.ApplyToPlatform(&platform)
		platform.Touch(actor)
		return tx.Save(&platform).Error
	})
	if apperr.IsUniqueViolation(err) {
		return nil, apperr.DuplicateName("Platform")
	}
	if err != nil {
		return nil, err
	}
	return &platform, nil
}

func (s *PlatformService) ToggleStatus(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.Platform, error) {
	return toggleActive[models.Platform](ctx, s.db, id, "Platform", actor)
}

func (s *PlatformService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Platform{}, id, "Platform"); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM app_platforms WHERE platform_id = ?", id).Error; err != nil {
			return fmt.Errorf("detach platform: %w", err)
		}
		return tx.Delete(&models.Platform{}, "id = ?", id).Error
	})
}
