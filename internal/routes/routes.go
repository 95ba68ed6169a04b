package routes

import (
	"time"

	"github.com/gmattworld/applibry-api/internal/config"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/handlers"
	"github.com/gmattworld/applibry-api/internal/middleware"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Account     *handlers.AccountHandler
	App         *handlers.AppHandler
	Category    *handlers.CategoryHandler
	Tag         *handlers.TagHandler
	Platform    *handlers.PlatformHandler
	Role        *handlers.RoleHandler
	Permission  *handlers.PermissionHandler
	User        *handlers.UserHandler
	Analytics   *handlers.AnalyticsHandler
	Integration *handlers.IntegrationHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	app.Static(cfg.StoragePublicURL, cfg.StorageDir)

	api := app.Group("/api")
	api.Use(rateLimit(cfg.RateLimitPerMinute))

	api.Get("/health", h.Health.Check)

	v1 := api.Group("/v1")
	protected := middleware.JWTProtected(cfg)
	gate := func(code string) fiber.Handler {
		return middleware.RequirePermission(db, cfg, code)
	}

	// Auth (stricter limit)
	auth := v1.Group("/auth", rateLimit(cfg.AuthRateLimitPerMinute))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/verify", h.Auth.Verify)
	auth.Post("/verify/resend", h.Auth.ResendVerification)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", h.Auth.Logout)
	auth.Post("/password/initiate", h.Auth.ForgotPassword)
	auth.Post("/password/verify", h.Auth.VerifyResetCode)
	auth.Post("/password/reset", h.Auth.ResetPassword)

	// Public storefront
	public := v1.Group("/public")
	public.Get("/apps", h.App.PublicList)
	public.Get("/apps/:slug", h.App.PublicGet)
	public.Get("/categories", h.Category.PublicList)

	// Current user
	me := v1.Group("/me", protected)
	me.Get("/", h.Account.Me)
	me.Put("/profile", h.Account.UpdateProfile)
	me.Post("/password", h.Auth.ChangePassword)
	me.Post("/preferences/configured", h.Account.ConfirmPreferences)
	me.Get("/apps", h.Account.Library)
	me.Post("/apps/:id", h.Account.AddApp)
	me.Delete("/apps/:id", h.Account.RemoveApp)
	me.Get("/categories", h.Account.Preferences)
	me.Post("/categories/:id", h.Account.AddCategory)
	me.Delete("/categories/:id", h.Account.RemoveCategory)
	me.Get("/feed", h.Account.Feed)

	apps := v1.Group("/apps", protected, gate(models.PermManageApps))
	apps.Get("/", h.App.List)
	apps.Post("/", h.App.Create)
	apps.Get("/:id", h.App.Get)
	apps.Put("/:id", h.App.Update)
	apps.Patch("/:id", h.App.Update)
	apps.Post("/:id/publish", h.App.Publish)
	apps.Post("/:id/revert", h.App.Revert)
	apps.Patch("/:id/status", h.App.ToggleStatus)
	apps.Delete("/:id", h.App.Delete)

	categories := v1.Group("/categories", protected, gate(models.PermManageCategories))
	categories.Get("/", h.Category.List)
	categories.Post("/", h.Category.Create)
	categories.Get("/:id", h.Category.Get)
	categories.Put("/:id", h.Category.Update)
	categories.Patch("/:id", h.Category.Update)
	categories.Patch("/:id/status", h.Category.ToggleStatus)
	categories.Delete("/:id", h.Category.Delete)

	tags := v1.Group("/tags", protected, gate(models.PermManageTags))
	tags.Get("/", h.Tag.List)
	tags.Post("/", h.Tag.Create)
	tags.Get("/:id", h.Tag.Get)
	tags.Put("/:id", h.Tag.Update)
	tags.Patch("/:id", h.Tag.Update)
	tags.Patch("/:id/status", h.Tag.ToggleStatus)
	tags.Delete("/:id", h.Tag.Delete)

	platforms := v1.Group("/platforms", protected, gate(models.PermManagePlatforms))
	platforms.Get("/", h.Platform.List)
	platforms.Post("/", h.Platform.Create)
	platforms.Get("/:id", h.Platform.Get)
	platforms.Put("/:id", h.Platform.Update)
	platforms.Patch("/:id", h.Platform.Update)
	platforms.Patch("/:id/status", h.Platform.ToggleStatus)
	platforms.Delete("/:id", h.Platform.Delete)

	roles := v1.Group("/roles", protected, gate(models.PermManageRoles))
	roles.Get("/", h.Role.List)
	roles.Post("/", h.Role.Create)
	roles.Get("/:id", h.Role.Get)
	roles.Put("/:id", h.Role.Update)
	roles.Patch("/:id", h.Role.Update)
	roles.Patch("/:id/status", h.Role.ToggleStatus)
	roles.Delete("/:id", h.Role.Delete)
	roles.Post("/:id/permissions/:permissionId", h.Role.Grant)
	roles.Delete("/:id/permissions/:permissionId", h.Role.Revoke)

	permissions := v1.Group("/permissions", protected, gate(models.PermManagePermissions))
	permissions.Get("/", h.Permission.List)
	permissions.Post("/", h.Permission.Create)
	permissions.Get("/:id", h.Permission.Get)
	permissions.Put("/:id", h.Permission.Update)
	permissions.Patch("/:id", h.Permission.Update)
	permissions.Patch("/:id/status", h.Permission.ToggleStatus)
	permissions.Delete("/:id", h.Permission.Delete)

	users := v1.Group("/users", protected, gate(models.PermManageUsers))
	users.Get("/", h.User.List)
	users.Post("/invite", h.User.Invite)
	users.Get("/:id", h.User.Get)
	users.Put("/:id", h.User.Update)
	users.Patch("/:id", h.User.Update)
	users.Patch("/:id/status", h.User.ToggleStatus)
	users.Delete("/:id", h.User.Delete)

	// Lookups feed the admin form selects; any signed-in user may read them.
	v1.Get("/lookups/:type", protected, h.Analytics.Lookup)

	analytics := v1.Group("/analytics", protected, gate(models.PermViewAnalytics))
	analytics.Get("/dashboard", h.Analytics.Dashboard)
	analytics.Get("/stats/:entity", h.Analytics.Stats)
	analytics.Post("/recount", gate(models.PermManageApps), h.Analytics.Recount)

	nattypad := v1.Group("/integrations/nattypad", protected, gate(models.PermManageIntegrations))
	nattypad.Get("/categories", h.Integration.NattyPadCategories)
	nattypad.Get("/categories/:id", h.Integration.NattyPadCategory)
	nattypad.Get("/quotes", h.Integration.NattyPadQuotes)
	nattypad.Get("/quotes/:id", h.Integration.NattyPadQuote)
}

func rateLimit(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               perMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Success:    false,
				Message:    "Too many requests",
				StatusCode: fiber.StatusTooManyRequests,
			})
		},
	})
}
