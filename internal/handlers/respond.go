package handlers

import (
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ok(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(dto.Response{Data: data, Success: true, Message: message, StatusCode: fiber.StatusOK})
}

func created(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		Data: data, Success: true, Message: message, StatusCode: fiber.StatusCreated,
	})
}

func cursorPage[T any](c *fiber.Ctx, page listing.Page[T], message string) error {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(dto.CursorResponse{
		Response:   dto.Response{Data: items, Success: true, Message: message, StatusCode: fiber.StatusOK},
		NextCursor: page.NextCursor,
	})
}

func offsetPage[T any](c *fiber.Ctx, result listing.Result[T], message string) error {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(dto.PagedResponse{
		Response:    dto.Response{Data: items, Success: true, Message: message, StatusCode: fiber.StatusOK},
		CurrentPage: result.Page,
		PageSize:    result.PageSize,
		Total:       result.Total,
	})
}

// fail writes the error envelope. Unexpected errors are logged and reported
// to Sentry; their text never reaches the client.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Success:    false,
		Message:    apperr.Message(err),
		StatusCode: status,
	})
}

// bind parses the JSON body into req and validates it.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	return dto.Validate(req)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid " + name)
	}
	return id, nil
}

func cursorParams(c *fiber.Ctx) listing.Params {
	return listing.Params{
		Search:       c.Query("search"),
		Category:     c.Query("category"),
		Cursor:       c.Query("cursor"),
		Limit:        c.QueryInt("limit", listing.DefaultLimit),
		Personalised: c.QueryBool("personalised", false),
		Trending:     c.QueryBool("trending", false),
	}
}

func offsetParams(c *fiber.Ctx) listing.Offset {
	return listing.NewOffset(c.QueryInt("page", 1), c.QueryInt("page_size", listing.DefaultLimit))
}

// actor is the authenticated caller's id, or nil on public routes.
func actor(c *fiber.Ctx) *uuid.UUID {
	p, err := principal.FromCtx(c)
	if err != nil {
		return nil
	}
	return &p.UserID
}
