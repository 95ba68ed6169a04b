package handlers

import (
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	result, err := h.categoryService.List(c.UserContext(), c.Query("search"), offsetParams(c))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, result, "Categories retrieved")
}

func (h *CategoryHandler) PublicList(c *fiber.Ctx) error {
	result, err := h.categoryService.Public(c.UserContext(), c.Query("search"), offsetParams(c))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, result, "Categories retrieved")
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	category, err := h.categoryService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, category, "Category retrieved")
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	category, err := h.categoryService.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, category, "Category created")
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateCategoryRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	category, err := h.categoryService.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, category, "Category updated")
}

func (h *CategoryHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	category, err := h.categoryService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, category, "Category status updated")
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.categoryService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Category deleted")
}

type TagHandler struct {
	tagService *services.TagService
}

func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

func (h *TagHandler) List(c *fiber.Ctx) error {
	result, err := h.tagService.List(c.UserContext(), c.Query("search"), offsetParams(c))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, result, "Tags retrieved")
}

func (h *TagHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	tag, err := h.tagService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, tag, "Tag retrieved")
}

func (h *TagHandler) Create(c *fiber.Ctx) error {
	var req dto.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	tag, err := h.tagService.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, tag, "Tag created")
}

func (h *TagHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateNamedRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	tag, err := h.tagService.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, tag, "Tag updated")
}

func (h *TagHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	tag, err := h.tagService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, tag, "Tag status updated")
}

func (h *TagHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.tagService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Tag deleted")
}

type PlatformHandler struct {
	platformService *services.PlatformService
}

func NewPlatformHandler(platformService *services.PlatformService) *PlatformHandler {
	return &PlatformHandler{platformService: platformService}
}

func (h *PlatformHandler) List(c *fiber.Ctx) error {
	result, err := h.platformService.List(c.UserContext(), c.Query("search"), offsetParams(c))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, result, "Platforms retrieved")
}

func (h *PlatformHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	platform, err := h.platformService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, platform, "Platform retrieved")
}

func (h *PlatformHandler) Create(c *fiber.Ctx) error {
	var req dto.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	platform, err := h.platformService.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, platform, "Platform created")
}

func (h *PlatformHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateNamedRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	platform, err := h.platformService.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, platform, "Platform updated")
}

func (h *PlatformHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	platform, err := h.platformService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, platform, "Platform status updated")
}

func (h *PlatformHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.platformService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Platform deleted")
}
