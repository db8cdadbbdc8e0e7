package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidName = errors.New("invalid filename")
	ErrNotFound    = errors.New("file not found")
)

// Store manages uploaded assets on the filesystem. Filenames are unique by
// construction (uuid prefix) so no locking is needed.
type Store struct {
	dir      string
	fallback []string
	log      *zap.Logger
}

func New(dir string, fallback []string, log *zap.Logger) *Store {
	return &Store{dir: dir, fallback: fallback, log: log}
}

type File struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	Type      string    `json:"type"`
}

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

func kind(name string) string {
	if _, ok := imageExts[strings.ToLower(filepath.Ext(name))]; ok {
		return "image"
	}
	return "video"
}

// ContentType resolves a served filename to a MIME type by extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := imageExts[ext]; ok {
		return ct
	}
	if ext == ".mp4" {
		return "video/mp4"
	}
	return "application/octet-stream"
}

// safe rejects anything that could escape the asset directory.
func safe(name string) bool {
	return name != "" &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`)
}

// Upload writes the bytes under a collision-proof name derived from the
// original and returns the stable relative URL.
func (s *Store) Upload(data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	cleaned := strings.ReplaceAll(filepath.Base(originalName), " ", "_")
	filename := uuid.NewString() + "-" + cleaned

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error("writing upload", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("write upload: %w", err)
	}

	s.log.Info("media uploaded", zap.String("name", filename), zap.Int("size", len(data)))
	return "/uploads/" + filename, nil
}

// List enumerates the asset directory, newest first.
func (s *Store) List() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []File{}, nil
		}
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Name:      e.Name(),
			URL:       "/uploads/" + e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
			Type:      kind(e.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// Delete removes one asset by filename after validating the name cannot
// escape the asset directory.
func (s *Store) Delete(name string) error {
	if !safe(name) {
		return ErrInvalidName
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Open resolves a filename to its content, trying the upload dir first and
// then each fallback directory, to tolerate differing deployment layouts.
func (s *Store) Open(name string) ([]byte, error) {
	if !safe(name) {
		return nil, ErrInvalidName
	}

	dirs := append([]string{s.dir}, s.fallback...)
	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
	}
	return nil, ErrNotFound
}
