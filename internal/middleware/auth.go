package middleware

import (
	"github.com/gmattworld/applibry-api/internal/config"
	"github.com/gmattworld/applibry-api/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Success:    false,
				Message:    "Unauthorized: invalid or expired token",
				StatusCode: fiber.StatusUnauthorized,
			})
		},
	})
}
