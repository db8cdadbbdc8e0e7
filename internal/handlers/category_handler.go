package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pegasusmrx/store-backend/internal/store"
)

type CategoryHandler struct {
	Store *store.Store
}

func NewCategoryHandler(s *store.Store) *CategoryHandler {
	return &CategoryHandler{Store: s}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	var out []store.Category
	err := h.Store.View(func(d *store.Document) error {
		out = d.Categories
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load categories")
	}
	return ok(c, out)
}

type createCategoryReq struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req createCategoryReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs := FieldErrors{}
		errs.Add("name", "Name is required")
		return validationFail(c, errs)
	}

	cat := store.Category{
		ID:   uuid.NewString(),
		Name: name,
		Slug: strings.ReplaceAll(strings.ToLower(name), " ", "-"),
	}

	err := h.Store.Update(func(d *store.Document) error {
		d.Categories = append(d.Categories, cat)
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create category")
	}
	return ok(c, cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "ID required")
	}

	err := h.Store.Update(func(d *store.Document) error {
		kept := d.Categories[:0]
		for _, cat := range d.Categories {
			if cat.ID != id {
				kept = append(kept, cat)
			}
		}
		d.Categories = kept
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to delete category")
	}
	return ok(c, fiber.Map{"deleted": id})
}
