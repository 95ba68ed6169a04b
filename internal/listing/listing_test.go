package listing

import (
	"fmt"
	"testing"
	"time"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/cursor"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-4))
	assert.Equal(t, 1, NormalizeLimit(1))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestTrim(t *testing.T) {
	name := func(s string) string { return cursor.Encode(s) }

	t.Run("short page has no cursor", func(t *testing.T) {
		page := Trim([]string{"a", "b"}, 3, name)
		assert.Equal(t, []string{"a", "b"}, page.Items)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("exact page has no cursor", func(t *testing.T) {
		page := Trim([]string{"a", "b", "c"}, 3, name)
		assert.Len(t, page.Items, 3)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("over-fetched row yields cursor of last kept row", func(t *testing.T) {
		page := Trim([]string{"a", "b", "c", "d"}, 3, name)
		assert.Equal(t, []string{"a", "b", "c"}, page.Items)
		require.NotNil(t, page.NextCursor)
		got, err := cursor.Decode(*page.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, "c", got)
	})
}

func TestByCategory(t *testing.T) {
	_, err := ByCategory("apps.category_id", "not-a-uuid")
	assert.True(t, apperr.Is(err, apperr.KindInvalidFilter))

	scope, err := ByCategory("apps.category_id", "")
	require.NoError(t, err)
	assert.NotNil(t, scope)

	_, err = ByCategory("apps.category_id", uuid.NewString())
	assert.NoError(t, err)
}

func TestAfter_InvalidToken(t *testing.T) {
	_, err := After("name", "@@@")
	assert.True(t, apperr.Is(err, apperr.KindInvalidCursor))

	_, err = AfterRecent("created_at", "name", cursor.Encode("plain"))
	assert.True(t, apperr.Is(err, apperr.KindInvalidCursor))
}

func seedTags(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, db.Create(&models.Tag{Name: n}).Error)
	}
}

func TestSearch_CaseInsensitiveLiteral(t *testing.T) {
	db := testutil.NewDB(t)
	seedTags(t, db, "Photo Editor", "PHOTOBOOTH", "Video", "100% Free", "snake_case")

	var got []models.Tag
	require.NoError(t, db.Scopes(Search("name", "photo")).Order("name").Find(&got).Error)
	assert.Len(t, got, 2)

	got = nil
	require.NoError(t, db.Scopes(Search("name", "%")).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, "100% Free", got[0].Name)

	got = nil
	require.NoError(t, db.Scopes(Search("name", "e_c")).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, "snake_case", got[0].Name)

	got = nil
	require.NoError(t, db.Scopes(Search("name", "  ")).Find(&got).Error)
	assert.Len(t, got, 5)
}

func TestAfter_PaginatesByName(t *testing.T) {
	db := testutil.NewDB(t)
	for i := 0; i < 7; i++ {
		seedTags(t, db, fmt.Sprintf("tag-%02d", i))
	}

	var seen []string
	token := ""
	for pages := 0; pages < 10; pages++ {
		after, err := After("name", token)
		require.NoError(t, err)

		var rows []models.Tag
		require.NoError(t, db.Scopes(after).Order("name ASC").Limit(3+1).Find(&rows).Error)
		page := Trim(rows, 3, func(tg models.Tag) string { return cursor.Encode(tg.Name) })
		assert.LessOrEqual(t, len(page.Items), 3)
		for _, tg := range page.Items {
			seen = append(seen, tg.Name)
		}
		if page.NextCursor == nil {
			break
		}
		token = *page.NextCursor
	}

	assert.Equal(t, []string{"tag-00", "tag-01", "tag-02", "tag-03", "tag-04", "tag-05", "tag-06"}, seen)
}

func TestAfterRecent_TupleComparison(t *testing.T) {
	db := testutil.NewDB(t)
	user := uuid.New()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := []models.UserCategory{
		{UserID: user, CategoryID: uuid.New(), CreatedAt: base.Add(2 * time.Hour)},
		{UserID: user, CategoryID: uuid.New(), CreatedAt: base.Add(time.Hour)},
		{UserID: user, CategoryID: uuid.New(), CreatedAt: base.Add(time.Hour)},
		{UserID: user, CategoryID: uuid.New(), CreatedAt: base},
	}
	require.NoError(t, db.Create(&rows).Error)

	// Position on the first of the two rows that share a timestamp, using the
	// category id as the tie-break name column.
	tied := []string{rows[1].CategoryID.String(), rows[2].CategoryID.String()}
	first, second := tied[0], tied[1]
	if second < first {
		first, second = second, first
	}

	scope, err := AfterRecent("created_at", "category_id", cursor.EncodeCompound(base.Add(time.Hour), first))
	require.NoError(t, err)

	var got []models.UserCategory
	require.NoError(t, db.Scopes(scope).Order("created_at DESC").Order("category_id ASC").Find(&got).Error)
	require.Len(t, got, 2)
	assert.Equal(t, second, got[0].CategoryID.String())
	assert.True(t, base.Equal(got[1].CreatedAt))
}

func TestOffset(t *testing.T) {
	o := NewOffset(0, 0)
	assert.Equal(t, 1, o.Page)
	assert.Equal(t, DefaultLimit, o.PageSize)

	db := testutil.NewDB(t)
	for i := 0; i < 5; i++ {
		seedTags(t, db, fmt.Sprintf("t%d", i))
	}
	var got []models.Tag
	require.NoError(t, db.Scopes(NewOffset(2, 2).Scope()).Order("name").Find(&got).Error)
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].Name)
}
