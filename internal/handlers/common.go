package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	errProductMissing = errors.New("product not found")
	errSkipSave       = errors.New("skip save")
)

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// clientIP returns the first hop of X-Forwarded-For, falling back to the
// connection address.
func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return c.IP()
}

// clientCountry is a best-effort geolocation from proxy headers.
func clientCountry(c *fiber.Ctx) string {
	if v := c.Get("X-Vercel-IP-Country"); v != "" {
		return v
	}
	if v := c.Get("CF-IPCountry"); v != "" {
		return v
	}
	return "Unknown"
}
