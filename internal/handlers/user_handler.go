package handlers

import (
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the admin user directory.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	result, err := h.userService.List(c.UserContext(), c.Query("search"), offsetParams(c))
	if err != nil {
		return fail(c, err)
	}
	items := make([]dto.UserResponse, len(result.Items))
	for i := range result.Items {
		items[i] = dto.NewUserResponse(&result.Items[i])
	}
	return c.JSON(dto.PagedResponse{
		Response:    dto.Response{Data: items, Success: true, Message: "Users retrieved", StatusCode: fiber.StatusOK},
		CurrentPage: result.Page,
		PageSize:    result.PageSize,
		Total:       result.Total,
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	user, err := h.userService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dto.NewUserResponse(user), "User retrieved")
}

func (h *UserHandler) Invite(c *fiber.Ctx) error {
	var req dto.InviteUserRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.userService.Invite(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, dto.NewUserResponse(user), "Invitation sent")
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.userService.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dto.NewUserResponse(user), "User updated")
}

func (h *UserHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	user, err := h.userService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dto.NewUserResponse(user), "User status updated")
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.userService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "User deleted")
}
