package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/media"
)

type MediaHandler struct {
	Media *media.Store
	Log   *zap.Logger
}

func NewMediaHandler(m *media.Store, log *zap.Logger) *MediaHandler {
	return &MediaHandler{Media: m, Log: log}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No file received")
	}
	if file.Size <= 0 {
		return fail(c, fiber.StatusBadRequest, "Empty file")
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Unreadable file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Unreadable file")
	}

	url, err := h.Media.Upload(data, file.Filename)
	if err != nil {
		h.Log.Error("upload failed", zap.String("name", file.Filename), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Upload failed")
	}
	return ok(c, fiber.Map{"url": url})
}

func (h *MediaHandler) List(c *fiber.Ctx) error {
	files, err := h.Media.List()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to list files")
	}
	return ok(c, files)
}

func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	name := c.Query("filename")
	if name == "" {
		return fail(c, fiber.StatusBadRequest, "Filename is required")
	}

	switch err := h.Media.Delete(name); {
	case errors.Is(err, media.ErrInvalidName):
		return fail(c, fiber.StatusBadRequest, "Invalid filename")
	case errors.Is(err, media.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "File not found")
	case err != nil:
		return fail(c, fiber.StatusInternalServerError, "Failed to delete file")
	}
	return ok(c, fiber.Map{"deleted": name})
}

// Serve streams an asset by filename, resolving across the configured
// candidate directories.
func (h *MediaHandler) Serve(c *fiber.Ctx) error {
	name := c.Params("filename")

	data, err := h.Media.Open(name)
	switch {
	case errors.Is(err, media.ErrInvalidName):
		return fail(c, fiber.StatusBadRequest, "Invalid filename")
	case errors.Is(err, media.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "File not found")
	case err != nil:
		return fail(c, fiber.StatusInternalServerError, "Failed to read file")
	}

	c.Set("Content-Type", media.ContentType(name))
	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Send(data)
}
