package handlers

import (
	"math/rand"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/store"
)

type ProductHandler struct {
	Store *store.Store
	Log   *zap.Logger
}

func NewProductHandler(s *store.Store, log *zap.Logger) *ProductHandler {
	return &ProductHandler{Store: s, Log: log}
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// shortID mirrors the ids already present in live data files.
func shortID() string {
	b := make([]byte, 7)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return string(b)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	var out []store.Product
	err := h.Store.View(func(d *store.Document) error {
		out = d.Products
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load products")
	}
	return ok(c, out)
}

func validateProduct(p *store.Product) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(p.Title) == "" {
		errs.Add("title", "Title is required")
	}
	if _, err := decimal.NewFromString(p.Price); err != nil {
		errs.Add("price", "Price must be a decimal number")
	}
	return errs
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var p store.Product
	if err := c.BodyParser(&p); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if errs := validateProduct(&p); len(errs) > 0 {
		return validationFail(c, errs)
	}

	p.ID = shortID()
	if p.Type == "" {
		p.Type = string(store.ProductInstantFile)
	}

	err := h.Store.Update(func(d *store.Document) error {
		d.Products = append(d.Products, p)
		d.Profile.ProductsCount = len(d.Products)
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create product")
	}
	return ok(c, p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var p store.Product
	if err := c.BodyParser(&p); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if p.ID == "" {
		return fail(c, fiber.StatusBadRequest, "ID required")
	}
	if errs := validateProduct(&p); len(errs) > 0 {
		return validationFail(c, errs)
	}

	found := false
	err := h.Store.Update(func(d *store.Document) error {
		for i := range d.Products {
			if d.Products[i].ID == p.ID {
				d.Products[i] = p
				found = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to update product")
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}
	return ok(c, p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "ID required")
	}

	err := h.Store.Update(func(d *store.Document) error {
		kept := d.Products[:0]
		for _, p := range d.Products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		d.Products = kept
		d.Profile.ProductsCount = len(d.Products)
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to delete product")
	}
	return ok(c, fiber.Map{"deleted": id})
}
