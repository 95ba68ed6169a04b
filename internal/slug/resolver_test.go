package slug_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/slug"
	"github.com/gmattworld/applibry-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createCategory(t *testing.T, db *gorm.DB, name, s string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: s}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestResolver_SequentialSuffixes(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := slug.NewResolver("categories", "slug")

	first, err := r.Resolve(ctx, db, "Photo Editor", nil)
	require.NoError(t, err)
	assert.Equal(t, "photo-editor", first)
	createCategory(t, db, "Photo Editor", first)

	second, err := r.Resolve(ctx, db, "Photo Editor!", nil)
	require.NoError(t, err)
	assert.Equal(t, "photo-editor-1", second)
	createCategory(t, db, "Photo Editor!", second)

	third, err := r.Resolve(ctx, db, "photo editor", nil)
	require.NoError(t, err)
	assert.Equal(t, "photo-editor-2", third)
}

func TestResolver_ExcludesRowBeingUpdated(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := slug.NewResolver("categories", "slug")

	a := createCategory(t, db, "Photo Editor", "photo-editor")

	got, err := r.Resolve(ctx, db, "Photo Editor", &a.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo-editor", got)
}

func TestResolver_RenameIntoCollision(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := slug.NewResolver("categories", "slug")

	a := createCategory(t, db, "Sketch Pad", "sketch-pad")
	b := createCategory(t, db, "Photo Editor", "photo-editor")

	got, err := r.Resolve(ctx, db, "Photo Editor", &a.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo-editor-1", got)

	var reloaded models.Category
	require.NoError(t, db.First(&reloaded, "id = ?", b.ID).Error)
	assert.Equal(t, "photo-editor", reloaded.Slug)
}

func TestResolver_EmptyBase(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := slug.NewResolver("categories", "slug").Resolve(context.Background(), db, "!!!", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries unique violations then succeeds", func(t *testing.T) {
		calls := 0
		err := slug.WithRetry(ctx, func() error {
			calls++
			if calls < 2 {
				return gorm.ErrDuplicatedKey
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up with a conflict", func(t *testing.T) {
		calls := 0
		err := slug.WithRetry(ctx, func() error {
			calls++
			return gorm.ErrDuplicatedKey
		})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		assert.Equal(t, slug.MaxAttempts, calls)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := slug.WithRetry(ctx, func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
