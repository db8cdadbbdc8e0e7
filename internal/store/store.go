package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store owns the on-disk JSON document. Every mutation goes through Update,
// which holds the mutex for the whole load-modify-save cycle so two concurrent
// handlers cannot silently discard each other's writes.
type Store struct {
	mu       sync.Mutex
	dataPath string
	basePath string
	log      *zap.Logger
}

func New(dataPath, basePath string, log *zap.Logger) *Store {
	return &Store{dataPath: dataPath, basePath: basePath, log: log}
}

// Load reads and parses the document. A missing file yields defaults without
// writing anything; the first Update persists them. A corrupt file is
// quarantined next to the original and replaced by defaults so the app keeps
// running. Any other read failure propagates.
func (s *Store) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Document, error) {
	raw, err := os.ReadFile(s.dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.defaults(), nil
		}
		s.log.Error("reading data file", zap.String("path", s.dataPath), zap.Error(err))
		return nil, fmt.Errorf("read %s: %w", s.dataPath, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		quarantine := fmt.Sprintf("%s.corrupt.%d", s.dataPath, time.Now().UnixNano())
		if werr := os.WriteFile(quarantine, raw, 0o644); werr != nil {
			s.log.Error("writing quarantine copy", zap.String("path", quarantine), zap.Error(werr))
		}
		s.log.Error("data file corrupted, falling back to defaults",
			zap.String("quarantine", quarantine), zap.Error(err))
		return s.defaults(), nil
	}

	doc.normalize()
	return &doc, nil
}

// Save writes the whole document atomically: temp file first, then rename over
// the canonical path, so a reader never observes a half-written file.
func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *Store) save(doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.dataPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := s.dataPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.log.Error("writing temp data file", zap.String("path", tmp), zap.Error(err))
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.dataPath); err != nil {
		s.log.Error("renaming temp data file", zap.String("path", s.dataPath), zap.Error(err))
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", s.dataPath, err)
	}
	return nil
}

// Update runs fn against the current document and persists the result. The
// mutex is held end to end, making the read-modify-write effectively atomic.
// If fn returns an error nothing is written.
func (s *Store) Update(fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// View runs fn against a freshly loaded document without writing it back.
func (s *Store) View(fn func(*Document) error) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// ResetToBase restores the admin-blessed base snapshot, or factory defaults
// when none has been captured.
func (s *Store) ResetToBase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.defaults()
	if _, err := os.Stat(s.basePath); err == nil {
		s.log.Info("restoring from base snapshot", zap.String("path", s.basePath))
	} else {
		s.log.Info("restoring factory defaults")
	}
	return s.save(doc)
}

// CaptureBase snapshots the current catalog and profile as the new base for
// future resets. Transactional collections are cleared and counters reset so
// a reset wipes history but keeps the storefront.
func (s *Store) CaptureBase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	base := Document{
		Profile:    doc.Profile,
		Products:   doc.Products,
		Categories: doc.Categories,
		Orders:     []Order{},
		Tickets:    []Ticket{},
		Visits:     []Visit{},
		Reviews:    []Review{},
	}
	base.Profile.SalesCount = 0
	base.Profile.ProductsCount = len(doc.Products)

	raw, err := json.MarshalIndent(&base, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal base snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.basePath), 0o755); err != nil {
		return fmt.Errorf("create base dir: %w", err)
	}
	if err := os.WriteFile(s.basePath, raw, 0o644); err != nil {
		s.log.Error("writing base snapshot", zap.String("path", s.basePath), zap.Error(err))
		return fmt.Errorf("write %s: %w", s.basePath, err)
	}
	s.log.Info("base snapshot saved", zap.String("path", s.basePath))
	return nil
}

// DataPath exposes the canonical file location for backup export.
func (s *Store) DataPath() string { return s.dataPath }

// RestoreRaw replaces the data file with imported bytes after validating them,
// and rewrites the base snapshot with transactional collections stripped so a
// later reset matches the imported catalog.
func (s *Store) RestoreRaw(raw []byte) error {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid backup data: %w", err)
	}
	doc.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(&doc); err != nil {
		return err
	}

	base := doc
	base.Orders = []Order{}
	base.Tickets = []Ticket{}
	base.Visits = []Visit{}
	base.Reviews = []Review{}
	baseRaw, err := json.MarshalIndent(&base, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal base snapshot: %w", err)
	}
	if err := os.WriteFile(s.basePath, baseRaw, 0o644); err != nil {
		s.log.Error("updating base snapshot after import", zap.Error(err))
		return fmt.Errorf("write %s: %w", s.basePath, err)
	}
	return nil
}

// defaults loads the base snapshot if one exists, else factory defaults. Base
// snapshot parse failures fall back to the factory document.
func (s *Store) defaults() *Document {
	raw, err := os.ReadFile(s.basePath)
	if err != nil {
		return DefaultDocument()
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.log.Warn("base snapshot unreadable, using factory defaults", zap.Error(err))
		return DefaultDocument()
	}
	doc.normalize()
	return &doc
}
