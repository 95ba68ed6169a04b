package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, svc *AppService, name string, category uuid.UUID) *models.App {
	t.Helper()
	app, err := svc.Create(context.Background(), nil, &dto.CreateAppRequest{
		Name:       name,
		Brief:      "brief",
		CategoryID: category,
	})
	require.NoError(t, err)
	return app
}

func TestAppCreate_SlugAndCounter(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	cat := seedCategory(t, e.db, "Productivity")
	tag := models.Tag{Name: "notes"}
	require.NoError(t, e.db.Create(&tag).Error)

	actor := uuid.New()
	app, err := svc.Create(context.Background(), &actor, &dto.CreateAppRequest{
		Name:       "  Photo   Editor ",
		Brief:      "Edit photos",
		Status:     string(models.AppStatusPublished),
		CategoryID: cat.ID,
		Tags:       []uuid.UUID{tag.ID, tag.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Photo Editor", app.Name)
	assert.Equal(t, "photo-editor", app.Slug)
	assert.Equal(t, models.PricingFree, app.PricingModel)
	assert.NotNil(t, app.PublishedAt)
	require.NotNil(t, app.Category)
	assert.Equal(t, cat.ID, app.Category.ID)
	require.Len(t, app.Tags, 1)
	assert.Equal(t, &actor, app.CreatedByID)
	assert.Equal(t, 1, reloadCategory(t, e.db, cat.ID).AppCount)

	second := newApp(t, svc, "Photo Editor!", cat.ID)
	assert.Equal(t, "photo-editor-1", second.Slug)
	assert.Equal(t, 2, reloadCategory(t, e.db, cat.ID).AppCount)
}

func TestAppCreate_Rejections(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	cat := seedCategory(t, e.db, "Games")
	newApp(t, svc, "Chess", cat.ID)

	_, err := svc.Create(context.Background(), nil, &dto.CreateAppRequest{Name: "chess", Brief: "b", CategoryID: cat.ID})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateName))

	_, err = svc.Create(context.Background(), nil, &dto.CreateAppRequest{Name: "Go", Brief: "b", CategoryID: uuid.New()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Create(context.Background(), nil, &dto.CreateAppRequest{Name: "Go", Brief: "b", CategoryID: cat.ID, Platforms: []uuid.UUID{uuid.New()}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.Equal(t, 1, reloadCategory(t, e.db, cat.ID).AppCount)
}

func TestAppUpdate_RenameAndMove(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	games := seedCategory(t, e.db, "Games")
	tools := seedCategory(t, e.db, "Tools")
	app := newApp(t, svc, "Chess", games.ID)
	newApp(t, svc, "Checkers", games.ID)

	name := "Chess Pro"
	brief := "New brief"
	updated, err := svc.Update(context.Background(), nil, app.ID, &dto.UpdateAppRequest{
		Name:       &name,
		Brief:      &brief,
		CategoryID: &tools.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "chess-pro", updated.Slug)
	assert.Equal(t, "New brief", updated.Brief)
	assert.Equal(t, tools.ID, updated.CategoryID)
	assert.Equal(t, 1, reloadCategory(t, e.db, games.ID).AppCount)
	assert.Equal(t, 1, reloadCategory(t, e.db, tools.ID).AppCount)

	// Keeping the name keeps the slug.
	same, err := svc.Update(context.Background(), nil, app.ID, &dto.UpdateAppRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "chess-pro", same.Slug)

	taken := "checkers"
	_, err = svc.Update(context.Background(), nil, app.ID, &dto.UpdateAppRequest{Name: &taken})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateName))
}

func TestAppUpdate_MoveFromZeroCounterStaysFloored(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	games := seedCategory(t, e.db, "Games")
	tools := seedCategory(t, e.db, "Tools")
	app := newApp(t, svc, "Chess", games.ID)
	require.NoError(t, e.db.Model(&models.Category{}).Where("id = ?", games.ID).Update("app_count", 0).Error)

	_, err := svc.Update(context.Background(), nil, app.ID, &dto.UpdateAppRequest{CategoryID: &tools.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, reloadCategory(t, e.db, games.ID).AppCount)
	assert.Equal(t, 1, reloadCategory(t, e.db, tools.ID).AppCount)
}

func TestAppPublishAndRevert(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	cat := seedCategory(t, e.db, "Games")
	app := newApp(t, svc, "Chess", cat.ID)
	assert.Equal(t, models.AppStatusDraft, app.Status)

	published, err := svc.Publish(context.Background(), nil, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	bySlug, err := svc.GetBySlug(context.Background(), "chess")
	require.NoError(t, err)
	assert.Equal(t, app.ID, bySlug.ID)

	reverted, err := svc.Revert(context.Background(), nil, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatusDraft, reverted.Status)

	_, err = svc.GetBySlug(context.Background(), "chess")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAppList_Pagination(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	cat := seedCategory(t, e.db, "Games")
	for _, name := range []string{"Echo", "Alpha", "Delta", "Bravo", "Charlie"} {
		newApp(t, svc, name, cat.ID)
	}

	var names []string
	params := listing.Params{Limit: 2}
	for pages := 0; pages < 5; pages++ {
		page, err := svc.List(context.Background(), nil, params)
		require.NoError(t, err)
		for _, a := range page.Items {
			names = append(names, a.Name)
		}
		if page.NextCursor == nil {
			break
		}
		params.Cursor = *page.NextCursor
	}
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}, names)

	exact, err := svc.List(context.Background(), nil, listing.Params{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, exact.Items, 5)
	assert.Nil(t, exact.NextCursor)
}

func TestAppList_Filters(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	games := seedCategory(t, e.db, "Games")
	tools := seedCategory(t, e.db, "Tools")
	chess := newApp(t, svc, "Chess", games.ID)
	newApp(t, svc, "100% Sudoku", games.ID)
	newApp(t, svc, "Hammer", tools.ID)

	trending := true
	_, err := svc.Update(context.Background(), nil, chess.ID, &dto.UpdateAppRequest{Trending: &trending})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), nil, listing.Params{Category: games.ID.String()})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(context.Background(), nil, listing.Params{Search: "%"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "100% Sudoku", page.Items[0].Name)

	page, err = svc.List(context.Background(), nil, listing.Params{Trending: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Chess", page.Items[0].Name)

	page, err = svc.List(context.Background(), nil, listing.Params{Category: uuid.NewString()})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = svc.List(context.Background(), nil, listing.Params{Category: "games"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidFilter))

	_, err = svc.List(context.Background(), nil, listing.Params{Cursor: "!!"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidCursor))

	page, err = svc.List(context.Background(), nil, listing.Params{PublishedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestAppList_Personalised(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	games := seedCategory(t, e.db, "Games")
	tools := seedCategory(t, e.db, "Tools")
	chess := newApp(t, svc, "Chess", games.ID)
	newApp(t, svc, "Go", games.ID)
	newApp(t, svc, "Hammer", tools.ID)
	user := seedUser(t, e.db, "ada@example.com")

	// No preferences: everything.
	page, err := svc.List(context.Background(), &user.ID, listing.Params{Personalised: true})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	ctx := context.Background()
	require.NoError(t, e.assoc.Add(ctx, association.UserCategories, user.ID, games.ID))
	require.NoError(t, e.assoc.Add(ctx, association.UserApps, user.ID, chess.ID))

	page, err = svc.List(ctx, &user.ID, listing.Params{Personalised: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Go", page.Items[0].Name)

	// Without the flag the viewer is ignored.
	page, err = svc.List(ctx, &user.ID, listing.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}

func TestAppDelete_ReleasesCounters(t *testing.T) {
	e := newEnv(t)
	svc := NewAppService(e.db, e.assoc, passthroughStore{})
	cat := seedCategory(t, e.db, "Games")
	app := newApp(t, svc, "Chess", cat.ID)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		u := seedUser(t, e.db, fmt.Sprintf("user%d@example.com", i))
		require.NoError(t, e.assoc.Add(ctx, association.UserApps, u.ID, app.ID))
	}

	require.NoError(t, svc.Delete(ctx, app.ID))
	assert.Equal(t, 0, reloadCategory(t, e.db, cat.ID).AppCount)

	var links int64
	require.NoError(t, e.db.Model(&models.UserApp{}).Count(&links).Error)
	assert.Zero(t, links)

	_, err := svc.Get(ctx, app.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(svc.Delete(ctx, app.ID), apperr.KindNotFound))
}
