package handlers

import (
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pegasusmrx/store-backend/internal/store"
)

type ReviewHandler struct {
	Store *store.Store
}

func NewReviewHandler(s *store.Store) *ReviewHandler {
	return &ReviewHandler{Store: s}
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	productID := c.Query("productId")

	var out []store.Review
	err := h.Store.View(func(d *store.Document) error {
		for _, r := range d.Reviews {
			if productID == "" || r.ProductID == productID {
				out = append(out, r)
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch reviews")
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date // RFC3339 sorts lexicographically
	})
	return ok(c, out)
}

func parseBackdate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

type createReviewReq struct {
	ProductID string `json:"productId"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Date      string `json:"date"` // admin seed reviews may backdate
}

func (h *ReviewHandler) create(c *fiber.Ctx, allowBackdate bool) error {
	var req createReviewReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	errs := FieldErrors{}
	if req.ProductID == "" {
		errs.Add("productId", "Product is required")
	}
	if strings.TrimSpace(req.UserName) == "" {
		errs.Add("userName", "Name is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		errs.Add("rating", "Rating must be between 1 and 5")
	}
	date := time.Now().UTC().Format(time.RFC3339)
	if allowBackdate && req.Date != "" {
		// Stored dates sort lexicographically, so a backdate must normalize
		// to RFC3339 before it is persisted.
		parsed, err := parseBackdate(req.Date)
		if err != nil {
			errs.Add("date", "Date must be RFC3339 or YYYY-MM-DD")
		} else {
			date = parsed.UTC().Format(time.RFC3339)
		}
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	review := store.Review{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		UserName:  strings.TrimSpace(req.UserName),
		Rating:    req.Rating,
		Comment:   req.Comment,
		Date:      date,
	}

	notFound := false
	err := h.Store.Update(func(d *store.Document) error {
		var product *store.Product
		for i := range d.Products {
			if d.Products[i].ID == req.ProductID {
				product = &d.Products[i]
				break
			}
		}
		if product == nil {
			notFound = true
			return errProductMissing
		}
		review.ProductName = product.Title
		d.Reviews = append(d.Reviews, review)
		return nil
	})
	if notFound {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to submit review")
	}
	return ok(c, review)
}

// Create handles end-user reviews submitted post-purchase.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	return h.create(c, false)
}

// AdminCreate lets the merchant seed reviews with an arbitrary date.
func (h *ReviewHandler) AdminCreate(c *fiber.Ctx) error {
	return h.create(c, true)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "ID required")
	}

	found := false
	err := h.Store.Update(func(d *store.Document) error {
		kept := d.Reviews[:0]
		for _, r := range d.Reviews {
			if r.ID == id {
				found = true
				continue
			}
			kept = append(kept, r)
		}
		d.Reviews = kept
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to delete review")
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "Review not found")
	}
	return ok(c, fiber.Map{"deleted": id})
}
