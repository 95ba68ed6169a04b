package handlers

import (
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) List(c *fiber.Ctx) error {
	result, err := h.roleService.List(c.UserContext(), c.Query("search"), offsetParams(c))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, result, "Roles retrieved")
}

func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	role, err := h.roleService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, role, "Role retrieved")
}

func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	role, err := h.roleService.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, role, "Role created")
}

func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateRoleRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	role, err := h.roleService.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, role, "Role updated")
}

func (h *RoleHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	role, err := h.roleService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, role, "Role status updated")
}

func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.roleService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Role deleted")
}

func (h *RoleHandler) Grant(c *fiber.Ctx) error {
	roleID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	permissionID, err := paramID(c, "permissionId")
	if err != nil {
		return fail(c, err)
	}
	role, err := h.roleService.Grant(c.UserContext(), roleID, permissionID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, role, "Permission granted")
}

func (h *RoleHandler) Revoke(c *fiber.Ctx) error {
	roleID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	permissionID, err := paramID(c, "permissionId")
	if err != nil {
		return fail(c, err)
	}
	role, err := h.roleService.Revoke(c.UserContext(), roleID, permissionID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, role, "Permission revoked")
}

type PermissionHandler struct {
	permissionService *services.PermissionService
}

func NewPermissionHandler(permissionService *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

func (h *PermissionHandler) List(c *fiber.Ctx) error {
	result, err := h.permissionService.List(c.UserContext(), c.Query("search"), offsetParams(c))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, result, "Permissions retrieved")
}

func (h *PermissionHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	permission, err := h.permissionService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, permission, "Permission retrieved")
}

func (h *PermissionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePermissionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	permission, err := h.permissionService.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, permission, "Permission created")
}

func (h *PermissionHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdatePermissionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	permission, err := h.permissionService.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, permission, "Permission updated")
}

func (h *PermissionHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	permission, err := h.permissionService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, permission, "Permission status updated")
}

func (h *PermissionHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.permissionService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Permission deleted")
}
