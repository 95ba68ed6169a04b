package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/integrations/nattypad"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gmattworld/applibry-api/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code"`
	NextCursor *string         `json:"next_cursor"`
}

type noopStore struct{}

func (noopStore) Put(_ context.Context, payload string) (string, error) { return payload, nil }

// signedIn stands in for JWTProtected by placing verified claims in locals.
func signedIn(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{
			principal.ClaimSubject:   user.Username,
			principal.ClaimSessionID: user.ID.String(),
			principal.ClaimType:      principal.TokenTypeAccess,
		}})
		return c.Next()
	}
}

type fixture struct {
	db   *gorm.DB
	app  *fiber.App
	user *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	assoc := association.NewManager(db)

	user := &models.User{Username: "reader@example.com", Email: "reader@example.com", IsVerified: true}
	require.NoError(t, db.Create(user).Error)

	appService := services.NewAppService(db, assoc, noopStore{})
	account := NewAccountHandler(
		services.NewUserService(db, assoc, nil),
		services.NewLibraryService(db, assoc),
		appService,
	)
	apps := NewAppHandler(appService)
	integration := NewIntegrationHandler(nattypad.NewClient(nattypad.Config{}, nattypad.NewTokenCache(time.Hour)))

	app := fiber.New()
	app.Get("/public/apps", apps.PublicList)
	app.Get("/public/apps/:slug", apps.PublicGet)
	app.Get("/apps/:id", apps.Get)
	app.Post("/apps", apps.Create)
	app.Get("/anonymous/feed", account.Feed)

	me := app.Group("/me", signedIn(user))
	me.Get("/", account.Me)
	me.Get("/apps", account.Library)
	me.Post("/apps/:id", account.AddApp)
	me.Delete("/apps/:id", account.RemoveApp)

	app.Get("/integrations/nattypad/quotes", integration.NattyPadQuotes)

	return &fixture{db: db, app: app, user: user}
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: strings.ToLower(name)}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) catalogApp(t *testing.T, name string, category *models.Category, status models.AppStatus, trending bool) *models.App {
	t.Helper()
	a := &models.App{
		Name:       name,
		Slug:       strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Brief:      name + " brief",
		Status:     status,
		Trending:   trending,
		CategoryID: category.ID,
	}
	require.NoError(t, f.db.Create(a).Error)
	return a
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestPublicList_OnlyPublishedTrending(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Productivity")
	f.catalogApp(t, "Alpha", cat, models.AppStatusPublished, true)
	f.catalogApp(t, "Bravo", cat, models.AppStatusPublished, false)
	f.catalogApp(t, "Charlie", cat, models.AppStatusDraft, true)

	status, env := f.do(t, http.MethodGet, "/public/apps", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Nil(t, env.NextCursor)

	var items []models.App
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Alpha", items[0].Name)
}

func TestPublicList_MalformedCursor(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodGet, "/public/apps?cursor=%21%21", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid cursor", env.Message)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
}

func TestPublicGet_HidesDrafts(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Design")
	f.catalogApp(t, "Sketchy", cat, models.AppStatusDraft, false)

	status, env := f.do(t, http.MethodGet, "/public/apps/sketchy", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "App not found", env.Message)
}

func TestGet_InvalidID(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodGet, "/apps/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid id", env.Message)
}

func TestCreate_RejectsBadBodies(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodPost, "/apps", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", env.Message)

	status, env = f.do(t, http.MethodPost, "/apps", `{"brief":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Message, "name is required")
}

func TestLibrary_AddListRemove(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Games")
	game := f.catalogApp(t, "Chess", cat, models.AppStatusPublished, false)
	path := "/me/apps/" + game.ID.String()

	status, _ := f.do(t, http.MethodPost, path, "")
	require.Equal(t, http.StatusCreated, status)

	status, env := f.do(t, http.MethodPost, path, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "App already in library", env.Message)

	status, env = f.do(t, http.MethodGet, "/me/apps", "")
	require.Equal(t, http.StatusOK, status)
	var items []struct {
		ID      uuid.UUID `json:"id"`
		AddedAt time.Time `json:"added_at"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, game.ID, items[0].ID)
	assert.False(t, items[0].AddedAt.IsZero())

	status, _ = f.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = f.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "App not in library", env.Message)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, status)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, f.user.Email, me.Email)
}

func TestFeed_RequiresPrincipal(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodGet, "/anonymous/feed", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestNattyPad_NotConfigured(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodGet, "/integrations/nattypad/quotes", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "NattyPad integration is not configured", env.Message)
}

func TestNattyPad_UpstreamFailureIs502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/apps/login" {
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "t"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := nattypad.NewClient(nattypad.Config{BaseURL: upstream.URL, ClientID: "id", ClientSecret: "secret"},
		nattypad.NewTokenCache(time.Hour))
	h := NewIntegrationHandler(client)
	app := fiber.New()
	app.Get("/quotes", h.NattyPadQuotes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quotes", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
