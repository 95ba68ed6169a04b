package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

func findByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, entity string, preloads ...string) (*T, error) {
	var m T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(entity)
		}
		return nil, fmt.Errorf("load %s: %w", strings.ToLower(entity), err)
	}
	return &m, nil
}

func ensureExists(tx *gorm.DB, model interface{}, id uuid.UUID, entity string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup %s: %w", strings.ToLower(entity), err)
	}
	if count == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

// ensureUniqueName is the pre-check in front of the unique index on name.
func ensureUniqueName(tx *gorm.DB, model interface{}, entity, name string, excludeID *uuid.UUID) error {
	q := tx.Model(model).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check %s name: %w", strings.ToLower(entity), err)
	}
	if count > 0 {
		return apperr.DuplicateName(entity)
	}
	return nil
}

// toggleActive flips is_active and returns the reloaded row.
func toggleActive[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, entity string, actor *uuid.UUID) (*T, error) {
	var m T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(entity)
			}
			return err
		}
		updates := map[string]interface{}{"is_active": gorm.Expr("NOT is_active")}
		if actor != nil {
			updates["updated_by_id"] = *actor
		}
		if err := tx.Model(&m).Updates(updates).Error; err != nil {
			return fmt.Errorf("toggle %s status: %w", strings.ToLower(entity), err)
		}
		return tx.First(&m, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// paginate counts the filtered set and loads one offset page of it.
func paginate[T any](q *gorm.DB, off listing.Offset, order string, preloads ...string) (listing.Result[T], error) {
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return listing.Result[T]{}, fmt.Errorf("count: %w", err)
	}

	page := base.Scopes(off.Scope()).Order(order)
	for _, p := range preloads {
		page = page.Preload(p)
	}
	var items []T
	if err := page.Find(&items).Error; err != nil {
		return listing.Result[T]{}, fmt.Errorf("list: %w", err)
	}
	return listing.Result[T]{Items: items, Total: total, Offset: off}, nil
}

func normalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	return name, nil
}
