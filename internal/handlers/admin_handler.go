package handlers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/store"
)

// AdminHandler covers the destructive maintenance operations: reset to the
// base snapshot, capture a new base, and full backup export/import.
type AdminHandler struct {
	Store     *store.Store
	UploadDir string
	Log       *zap.Logger
}

func NewAdminHandler(s *store.Store, uploadDir string, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Store: s, UploadDir: uploadDir, Log: log}
}

// Reset restores the base snapshot (or factory defaults). The confirmation
// prompt lives in the dashboard; this executes immediately.
func (h *AdminHandler) Reset(c *fiber.Ctx) error {
	if err := h.Store.ResetToBase(); err != nil {
		h.Log.Error("reset failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Failed to reset data")
	}
	return ok(c, fiber.Map{"message": "Data reset"})
}

// SaveDefault blesses the current catalog/profile as the new base snapshot.
func (h *AdminHandler) SaveDefault(c *fiber.Ctx) error {
	if err := h.Store.CaptureBase(); err != nil {
		h.Log.Error("capture base failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Failed to save configuration")
	}
	return ok(c, fiber.Map{"message": "Restore point saved"})
}

// BackupExport streams a zip of the data file plus every uploaded asset.
func (h *AdminHandler) BackupExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	raw, err := os.ReadFile(h.Store.DataPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return fail(c, fiber.StatusInternalServerError, "Failed to create backup")
		}
		raw = []byte("{}")
	}
	w, err := zw.Create("data/data.json")
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create backup")
	}
	if _, err := w.Write(raw); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create backup")
	}

	entries, err := os.ReadDir(h.UploadDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(h.UploadDir, e.Name()))
			if err != nil {
				h.Log.Warn("skipping unreadable asset in backup", zap.String("name", e.Name()), zap.Error(err))
				continue
			}
			fw, err := zw.Create("uploads/" + e.Name())
			if err != nil {
				return fail(c, fiber.StatusInternalServerError, "Failed to create backup")
			}
			if _, err := fw.Write(data); err != nil {
				return fail(c, fiber.StatusInternalServerError, "Failed to create backup")
			}
		}
	}

	if err := zw.Close(); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create backup")
	}

	filename := fmt.Sprintf("backup-%s.zip", time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

// BackupImport restores a previously exported archive: the data file is
// validated and swapped in, the base snapshot rewritten without transactional
// history, and bundled assets extracted into the upload dir.
func (h *AdminHandler) BackupImport(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No file uploaded")
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

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid backup archive")
	}

	var dataEntry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "data.json") {
			dataEntry = f
			break
		}
	}
	if dataEntry == nil {
		return fail(c, fiber.StatusBadRequest, "Invalid backup: missing data.json")
	}

	rc, err := dataEntry.Open()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to restore backup")
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to restore backup")
	}

	if err := h.Store.RestoreRaw(raw); err != nil {
		h.Log.Error("backup data restore failed", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Invalid backup data")
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to restore backup")
	}
	restored := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, "uploads/") {
			continue
		}
		name := filepath.Base(f.Name)
		if name == "" || name == "." || strings.Contains(name, "..") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(h.UploadDir, name), content, 0o644); err != nil {
			h.Log.Warn("failed to restore asset", zap.String("name", name), zap.Error(err))
			continue
		}
		restored++
	}

	h.Log.Info("backup imported", zap.Int("assets", restored))
	return ok(c, fiber.Map{"restoredAssets": restored})
}
