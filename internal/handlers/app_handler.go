package handlers

import (
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AppHandler struct {
	appService *services.AppService
}

func NewAppHandler(appService *services.AppService) *AppHandler {
	return &AppHandler{appService: appService}
}

func (h *AppHandler) List(c *fiber.Ctx) error {
	page, err := h.appService.List(c.UserContext(), actor(c), cursorParams(c))
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page, "Apps retrieved")
}

// PublicList serves the trending shelf of the storefront.
func (h *AppHandler) PublicList(c *fiber.Ctx) error {
	params := cursorParams(c)
	params.Trending = true
	params.Personalised = false
	params.PublishedOnly = true
	page, err := h.appService.List(c.UserContext(), nil, params)
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page, "Apps retrieved")
}

func (h *AppHandler) PublicGet(c *fiber.Ctx) error {
	app, err := h.appService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, app, "App retrieved")
}

func (h *AppHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	app, err := h.appService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, app, "App retrieved")
}

func (h *AppHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAppRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	app, err := h.appService.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, app, "App created")
}

func (h *AppHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateAppRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	app, err := h.appService.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, app, "App updated")
}

func (h *AppHandler) Publish(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	app, err := h.appService.Publish(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, app, "App published")
}

func (h *AppHandler) Revert(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	app, err := h.appService.Revert(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, app, "App reverted to draft")
}

func (h *AppHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	app, err := h.appService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, app, "App status updated")
}

func (h *AppHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.appService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "App deleted")
}
