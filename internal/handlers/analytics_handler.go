package handlers

import (
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	lookupService    *services.LookupService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, lookupService *services.LookupService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, lookupService: lookupService}
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	dashboard, err := h.analyticsService.Dashboard(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dashboard, "Dashboard retrieved")
}

func (h *AnalyticsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.analyticsService.Stats(c.UserContext(), c.Params("entity"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, stats, "Stats retrieved")
}

// Recount rebuilds every category's app counter from the apps table.
func (h *AnalyticsHandler) Recount(c *fiber.Ctx) error {
	result, err := h.analyticsService.Recount(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result, "Counters rebuilt")
}

func (h *AnalyticsHandler) Lookup(c *fiber.Ctx) error {
	items, err := h.lookupService.Lookup(c.UserContext(), c.Params("type"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, items, "Lookup retrieved")
}
