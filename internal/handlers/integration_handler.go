package handlers

import (
	"errors"
	"log/slog"

	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/integrations/nattypad"
	"github.com/gofiber/fiber/v2"
)

// IntegrationHandler proxies read-only NattyPad content for the admin UI.
type IntegrationHandler struct {
	nattypad *nattypad.Client
}

func NewIntegrationHandler(client *nattypad.Client) *IntegrationHandler {
	return &IntegrationHandler{nattypad: client}
}

func (h *IntegrationHandler) NattyPadCategories(c *fiber.Ctx) error {
	if !h.nattypad.Configured() {
		return unavailable(c)
	}
	page, err := h.nattypad.Categories(c.UserContext(), nattypadQuery(c))
	if err != nil {
		return upstreamFail(c, err)
	}
	return proxiedPage(c, page, "Categories retrieved")
}

func (h *IntegrationHandler) NattyPadCategory(c *fiber.Ctx) error {
	if !h.nattypad.Configured() {
		return unavailable(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	category, err := h.nattypad.Category(c.UserContext(), id)
	if err != nil {
		return upstreamFail(c, err)
	}
	return ok(c, category, "Category retrieved")
}

func (h *IntegrationHandler) NattyPadQuotes(c *fiber.Ctx) error {
	if !h.nattypad.Configured() {
		return unavailable(c)
	}
	page, err := h.nattypad.Quotes(c.UserContext(), nattypadQuery(c))
	if err != nil {
		return upstreamFail(c, err)
	}
	return proxiedPage(c, page, "Quotes retrieved")
}

func (h *IntegrationHandler) NattyPadQuote(c *fiber.Ctx) error {
	if !h.nattypad.Configured() {
		return unavailable(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	quote, err := h.nattypad.Quote(c.UserContext(), id)
	if err != nil {
		return upstreamFail(c, err)
	}
	return ok(c, quote, "Quote retrieved")
}

func nattypadQuery(c *fiber.Ctx) nattypad.Query {
	return nattypad.Query{
		Search:  c.Query("search"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("page_size", 20),
	}
}

func proxiedPage[T any](c *fiber.Ctx, page *nattypad.Page[T], message string) error {
	items := page.Data
	if items == nil {
		items = []T{}
	}
	return c.JSON(dto.PagedResponse{
		Response:    dto.Response{Data: items, Success: true, Message: message, StatusCode: fiber.StatusOK},
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		Total:       page.Total,
	})
}

func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Success:    false,
		Message:    "NattyPad integration is not configured",
		StatusCode: fiber.StatusServiceUnavailable,
	})
}

// upstreamFail maps provider outages to 502; everything else goes through fail.
func upstreamFail(c *fiber.Ctx, err error) error {
	if !errors.Is(err, nattypad.ErrUpstream) {
		return fail(c, err)
	}
	slog.Warn("nattypad request failed", "error", err, "path", c.Path())
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
		Success:    false,
		Message:    "NattyPad is unavailable",
		StatusCode: fiber.StatusBadGateway,
	})
}
