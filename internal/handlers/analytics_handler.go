package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/store"
)

type AnalyticsHandler struct {
	Store *store.Store
	Log   *zap.Logger
}

func NewAnalyticsHandler(s *store.Store, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Store: s, Log: log}
}

type trackReq struct {
	Path string `json:"path"`
}

func (h *AnalyticsHandler) Track(c *fiber.Ctx) error {
	var req trackReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	visit := store.Visit{
		ID:   shortID(),
		Path: req.Path,
		Date: time.Now().UTC().Format(time.RFC3339),
		IP:   clientIP(c),
	}

	skipped := false
	err := h.Store.Update(func(d *store.Document) error {
		// A default-looking document usually means the real file failed to
		// load; skip the save so a visit ping cannot clobber the database.
		if len(d.Products) == 0 && len(d.Orders) == 0 {
			skipped = true
			return errSkipSave
		}
		d.Visits = append(d.Visits, visit)
		return nil
	})
	if skipped {
		h.Log.Warn("database looks empty, visit not saved", zap.String("path", req.Path))
		return ok(c, fiber.Map{"skipped": true})
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to track visit")
	}
	return ok(c, fiber.Map{"tracked": visit.ID})
}

func (h *AnalyticsHandler) List(c *fiber.Ctx) error {
	var out []store.Visit
	err := h.Store.View(func(d *store.Document) error {
		out = d.Visits
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load analytics")
	}
	return ok(c, out)
}

// Live counts distinct IPs seen in the last five minutes.
func (h *AnalyticsHandler) Live(c *fiber.Ctx) error {
	cutoff := time.Now().Add(-5 * time.Minute)

	seen := map[string]struct{}{}
	err := h.Store.View(func(d *store.Document) error {
		for _, v := range d.Visits {
			ts, err := time.Parse(time.RFC3339, v.Date)
			if err != nil || ts.Before(cutoff) {
				continue
			}
			seen[v.IP] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load analytics")
	}
	return ok(c, fiber.Map{"live": len(seen)})
}

func (h *AnalyticsHandler) Reset(c *fiber.Ctx) error {
	err := h.Store.Update(func(d *store.Document) error {
		d.Visits = []store.Visit{}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to reset analytics")
	}
	return ok(c, fiber.Map{"message": "Analytics cleared"})
}
