package association_test

import (
	"context"
	"testing"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	mgr      *association.Manager
	user     models.User
	category models.Category
	app      models.App
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)

	user := models.User{Username: "ada@example.com", Email: "ada@example.com", PublicKey: uuid.NewString()}
	require.NoError(t, db.Create(&user).Error)

	category := models.Category{Name: "Productivity", Slug: "productivity"}
	require.NoError(t, db.Create(&category).Error)

	app := models.App{Name: "Notes", Slug: "notes", CategoryID: category.ID}
	require.NoError(t, db.Create(&app).Error)

	return fixture{db: db, mgr: association.NewManager(db), user: user, category: category, app: app}
}

func subscribers(t *testing.T, db *gorm.DB, app uuid.UUID) int {
	t.Helper()
	var a models.App
	require.NoError(t, db.First(&a, "id = ?", app).Error)
	return a.Subscribers
}

func linkCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.UserApp{}).Count(&n).Error)
	return n
}

func TestAdd_IncrementsOnceAndRejectsDuplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.mgr.Add(ctx, association.UserApps, f.user.ID, f.app.ID))
	assert.Equal(t, 1, subscribers(t, f.db, f.app.ID))

	err := f.mgr.Add(ctx, association.UserApps, f.user.ID, f.app.ID)
	assert.True(t, apperr.Is(err, apperr.KindDuplicateAssociation))
	assert.Equal(t, "App already in library", err.(*apperr.Error).Message)
	assert.Equal(t, 1, subscribers(t, f.db, f.app.ID))
	assert.Equal(t, int64(1), linkCount(t, f.db))
}

func TestAdd_MissingTarget(t *testing.T) {
	f := setup(t)

	err := f.mgr.Add(context.Background(), association.UserApps, f.user.ID, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, int64(0), linkCount(t, f.db))
}

func TestAdd_MissingOwner(t *testing.T) {
	f := setup(t)

	err := f.mgr.Add(context.Background(), association.UserApps, uuid.New(), f.app.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 0, subscribers(t, f.db, f.app.ID))
}

func TestRemove(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.mgr.Remove(ctx, association.UserApps, f.user.ID, f.app.ID)
	assert.True(t, apperr.Is(err, apperr.KindAssociationNotFound))
	assert.Equal(t, 0, subscribers(t, f.db, f.app.ID))

	require.NoError(t, f.mgr.Add(ctx, association.UserApps, f.user.ID, f.app.ID))
	require.NoError(t, f.mgr.Remove(ctx, association.UserApps, f.user.ID, f.app.ID))
	assert.Equal(t, 0, subscribers(t, f.db, f.app.ID))
	assert.Equal(t, int64(0), linkCount(t, f.db))

	err = f.mgr.Remove(ctx, association.UserApps, f.user.ID, f.app.ID)
	assert.True(t, apperr.Is(err, apperr.KindAssociationNotFound))
	assert.Equal(t, 0, subscribers(t, f.db, f.app.ID))
}

func TestRemove_CounterFlooredAtZero(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.mgr.Add(ctx, association.UserApps, f.user.ID, f.app.ID))
	// Simulate drift: the counter lags behind the link table.
	require.NoError(t, f.db.Model(&models.App{}).Where("id = ?", f.app.ID).UpdateColumn("subscribers", 0).Error)

	require.NoError(t, f.mgr.Remove(ctx, association.UserApps, f.user.ID, f.app.ID))
	assert.Equal(t, 0, subscribers(t, f.db, f.app.ID))
}

func TestRemove_MissingTarget(t *testing.T) {
	f := setup(t)

	err := f.mgr.Remove(context.Background(), association.UserCategories, f.user.ID, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUserCategories(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.mgr.Add(ctx, association.UserCategories, f.user.ID, f.category.ID))
	err := f.mgr.Add(ctx, association.UserCategories, f.user.ID, f.category.ID)
	assert.True(t, apperr.Is(err, apperr.KindDuplicateAssociation))

	var c models.Category
	require.NoError(t, f.db.First(&c, "id = ?", f.category.ID).Error)
	assert.Equal(t, 1, c.Subscribers)
}

func TestRolePermissions_NoCounter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	role := models.Role{Name: "Editor", Code: "editor"}
	require.NoError(t, f.db.Create(&role).Error)
	perm := models.Permission{Name: "Manage Apps", Code: "manage-apps", Module: models.ModuleApps}
	require.NoError(t, f.db.Create(&perm).Error)

	require.NoError(t, f.mgr.Add(ctx, association.RolePermissions, role.ID, perm.ID))
	err := f.mgr.Add(ctx, association.RolePermissions, role.ID, perm.ID)
	assert.True(t, apperr.Is(err, apperr.KindDuplicateAssociation))

	var loaded models.Role
	require.NoError(t, f.db.Preload("Permissions").First(&loaded, "id = ?", role.ID).Error)
	assert.True(t, loaded.Grants("manage-apps"))

	require.NoError(t, f.mgr.Remove(ctx, association.RolePermissions, role.ID, perm.ID))
	err = f.mgr.Remove(ctx, association.RolePermissions, role.ID, perm.ID)
	assert.True(t, apperr.Is(err, apperr.KindAssociationNotFound))
}

func TestDetachOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other := models.App{Name: "Calendar", Slug: "calendar", CategoryID: f.category.ID}
	require.NoError(t, f.db.Create(&other).Error)
	require.NoError(t, f.mgr.Add(ctx, association.UserApps, f.user.ID, f.app.ID))
	require.NoError(t, f.mgr.Add(ctx, association.UserApps, f.user.ID, other.ID))

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.mgr.DetachOwner(tx, association.UserApps, f.user.ID)
	}))
	assert.Equal(t, int64(0), linkCount(t, f.db))
	assert.Equal(t, 0, subscribers(t, f.db, f.app.ID))
	assert.Equal(t, 0, subscribers(t, f.db, other.ID))
}

func TestRecount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.mgr.Add(ctx, association.UserApps, f.user.ID, f.app.ID))
	require.NoError(t, f.db.Model(&models.App{}).Where("id = ?", f.app.ID).UpdateColumn("subscribers", 42).Error)
	require.NoError(t, f.db.Model(&models.Category{}).Where("id = ?", f.category.ID).UpdateColumn("app_count", 9).Error)

	_, err := f.mgr.Recount(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, subscribers(t, f.db, f.app.ID))
	var c models.Category
	require.NoError(t, f.db.First(&c, "id = ?", f.category.ID).Error)
	assert.Equal(t, 1, c.AppCount)
	assert.Equal(t, 0, c.Subscribers)
}
