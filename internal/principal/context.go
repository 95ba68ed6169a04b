// Package principal reads the authenticated caller out of the verified JWT
// stored in Fiber locals by middleware.JWTProtected.
package principal

import (
	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimSubject   = "sub"
	ClaimSessionID = "sid"
	ClaimType      = "type"

	TokenTypeAccess = "access"
)

// Principal is the caller: Subject is the username, UserID the user's id.
type Principal struct {
	Subject string
	UserID  uuid.UUID
}

// FromCtx extracts the principal from the JWT claims in context.
func FromCtx(c *fiber.Ctx) (Principal, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Principal{}, apperr.Unauthorized("Unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, apperr.Unauthorized("Invalid claims")
	}
	return FromClaims(claims)
}

// FromClaims validates a decoded claims mapping.
func FromClaims(claims jwt.MapClaims) (Principal, error) {
	if typ, _ := claims[ClaimType].(string); typ != TokenTypeAccess {
		return Principal{}, apperr.Unauthorized("Invalid token type")
	}

	sub, _ := claims[ClaimSubject].(string)
	if sub == "" {
		return Principal{}, apperr.Unauthorized("Missing subject claim")
	}

	sid, _ := claims[ClaimSessionID].(string)
	userID, err := uuid.Parse(sid)
	if err != nil {
		return Principal{}, apperr.Unauthorized("Missing user claim")
	}

	return Principal{Subject: sub, UserID: userID}, nil
}
