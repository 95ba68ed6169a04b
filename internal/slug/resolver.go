package slug

import (
	"context"
	"fmt"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxAttempts bounds WithRetry.
const MaxAttempts = 3

// Resolver finds the first free slug in a table column.
type Resolver struct {
	Table  string
	Column string
}

func NewResolver(table, column string) Resolver {
	return Resolver{Table: table, Column: column}
}

// Resolve returns Make(name), or Make(name) suffixed with -1, -2, ... when the
// plain form is taken. The row identified by excludeID never counts as a
// collision, so renaming a row can keep its own slug.
func (r Resolver) Resolve(ctx context.Context, db *gorm.DB, name string, excludeID *uuid.UUID) (string, error) {
	base := Make(name)
	if base == "" {
		return "", apperr.Validation("name must contain at least one letter or digit")
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := r.taken(ctx, db, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (r Resolver) taken(ctx context.Context, db *gorm.DB, candidate string, excludeID *uuid.UUID) (bool, error) {
	q := db.WithContext(ctx).Table(r.Table).Where(r.Column+" = ?", candidate)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s.%s: %w", r.Table, r.Column, err)
	}
	return count > 0, nil
}

// WithRetry runs fn, which should resolve a slug and write the row, again when
// the store rejects the write with a unique violation. Another writer may claim
// the same suffix between the probe and the insert. After MaxAttempts the
// violation is reported as a conflict.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if err == nil || !apperr.IsUniqueViolation(err) {
			return err
		}
	}
	return apperr.Conflict("could not allocate a unique identifier, please retry")
}
