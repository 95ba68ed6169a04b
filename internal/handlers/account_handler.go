package handlers

import (
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves the /me routes: the caller's profile, library,
// preferred categories and personalised feed.
type AccountHandler struct {
	userService    *services.UserService
	libraryService *services.LibraryService
	appService     *services.AppService
}

func NewAccountHandler(userService *services.UserService, libraryService *services.LibraryService, appService *services.AppService) *AccountHandler {
	return &AccountHandler{
		userService:    userService,
		libraryService: libraryService,
		appService:     appService,
	}
}

func (h *AccountHandler) Me(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.userService.Current(c.UserContext(), p)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dto.NewUserResponse(user), "Profile retrieved")
}

func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.userService.UpdateProfile(c.UserContext(), p.UserID, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dto.NewUserResponse(user), "Profile updated")
}

func (h *AccountHandler) ConfirmPreferences(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.userService.ConfirmPreferences(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dto.NewUserResponse(user), "Preferences configured")
}

func (h *AccountHandler) Library(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	page, err := h.libraryService.Library(c.UserContext(), p.UserID, cursorParams(c))
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page, "Library retrieved")
}

func (h *AccountHandler) AddApp(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.libraryService.AddApp(c.UserContext(), p.UserID, appID); err != nil {
		return fail(c, err)
	}
	return created(c, nil, "App added to library")
}

func (h *AccountHandler) RemoveApp(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.libraryService.RemoveApp(c.UserContext(), p.UserID, appID); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "App removed from library")
}

func (h *AccountHandler) Preferences(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	page, err := h.libraryService.Preferences(c.UserContext(), p.UserID, cursorParams(c))
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page, "Preferences retrieved")
}

func (h *AccountHandler) AddCategory(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	categoryID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.libraryService.AddCategory(c.UserContext(), p.UserID, categoryID); err != nil {
		return fail(c, err)
	}
	return created(c, nil, "Category added to preferences")
}

func (h *AccountHandler) RemoveCategory(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	categoryID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.libraryService.RemoveCategory(c.UserContext(), p.UserID, categoryID); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Category removed from preferences")
}

// Feed lists published apps in the caller's preferred categories that are
// not already in their library.
func (h *AccountHandler) Feed(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	params := cursorParams(c)
	params.Personalised = true
	params.PublishedOnly = true
	page, err := h.appService.List(c.UserContext(), &p.UserID, params)
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page, "Feed retrieved")
}
