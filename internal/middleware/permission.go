package middleware

import (
	"strings"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/config"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequirePermission guards an admin route. The caller passes when:
// 1. their id or email is listed in ADMIN_USER_IDS / ADMIN_EMAILS
// 2. they hold an active system role
// 3. they hold an active role granting code
func RequirePermission(db *gorm.DB, cfg *config.Config, code string) fiber.Handler {
	adminEmails := parseCSV(strings.ToLower(cfg.AdminEmails))
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		p, err := principal.FromCtx(c)
		if err != nil {
			return deny(c, err)
		}
		if contains(adminUserIDs, p.UserID.String()) {
			return c.Next()
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Preload("Role.Permissions").First(&user, "id = ?", p.UserID).Error; err != nil {
			return deny(c, apperr.Unauthorized("Unauthorized"))
		}
		if !user.IsActive || user.IsDeleted {
			return deny(c, apperr.Forbidden("Account is disabled"))
		}
		if contains(adminEmails, strings.ToLower(user.Email)) {
			return c.Next()
		}

		role := user.Role
		if role != nil && role.IsActive && !role.IsDeleted && (role.IsSystemRole || role.Grants(code)) {
			c.Locals("role_code", role.Code)
			return c.Next()
		}

		return deny(c, apperr.Forbidden("You do not have permission to perform this action"))
	}
}

func deny(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	return c.Status(status).JSON(dto.ErrorResponse{
		Success:    false,
		Message:    apperr.Message(err),
		StatusCode: status,
	})
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
