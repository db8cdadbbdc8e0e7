package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pegasusmrx/store-backend/internal/store"
)

type ProfileHandler struct {
	Store *store.Store
}

func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{Store: s}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	var profile store.Profile
	reviewsCount := 0
	err := h.Store.View(func(d *store.Document) error {
		profile = d.Profile
		reviewsCount = len(d.Reviews)
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load profile")
	}
	return ok(c, fiber.Map{
		"profile":      profile,
		"reviewsCount": reviewsCount,
	})
}

// updateProfileReq uses pointers so an absent key and an explicit empty value
// are distinguishable: only submitted fields overwrite the stored profile, and
// submitting "" (or 0) clears the field.
type updateProfileReq struct {
	Name           *string               `json:"name"`
	Handle         *string               `json:"handle"`
	Type           *string               `json:"type"`
	Tagline        *string               `json:"tagline"`
	Avatar         *string               `json:"avatar"`
	Socials        *store.Socials        `json:"socials"`
	Payout         *store.Payout         `json:"payout"`
	TelegramWidget *store.TelegramWidget `json:"telegramWidget"`
	ProductsCount  *int                  `json:"productsCount"`
	SalesCount     *int                  `json:"salesCount"`
}

// Update overwrites the stored profile with every submitted field. Counters
// are accepted as-is: the dashboard edits them deliberately.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	var out store.Profile
	err := h.Store.Update(func(d *store.Document) error {
		merged := d.Profile
		if req.Name != nil {
			merged.Name = *req.Name
		}
		if req.Handle != nil {
			merged.Handle = *req.Handle
		}
		if req.Type != nil {
			merged.Type = *req.Type
		}
		if req.Tagline != nil {
			merged.Tagline = *req.Tagline
		}
		if req.Avatar != nil {
			merged.Avatar = *req.Avatar
		}
		if req.Socials != nil {
			merged.Socials = req.Socials
		}
		if req.Payout != nil {
			merged.Payout = req.Payout
		}
		if req.TelegramWidget != nil {
			merged.TelegramWidget = req.TelegramWidget
		}
		if req.ProductsCount != nil {
			merged.ProductsCount = *req.ProductsCount
		}
		if req.SalesCount != nil {
			merged.SalesCount = *req.SalesCount
		}
		d.Profile = merged
		out = merged
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to update profile")
	}
	return ok(c, out)
}
