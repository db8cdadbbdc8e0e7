package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "data.json"), filepath.Join(dir, "data.base.json"), zap.NewNop())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Orders)
	assert.Empty(t, doc.Products)
	assert.Equal(t, 0, doc.Profile.SalesCount)

	// Load must not create the file; persisting is the caller's call.
	_, err = os.Stat(s.DataPath())
	assert.True(t, os.IsNotExist(err))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	doc := DefaultDocument()
	doc.Profile.Name = "Pegasus"
	doc.Profile.SalesCount = 7
	doc.Products = append(doc.Products, Product{
		ID: "p1", Title: "License Key", Price: "10.00", Type: "Instant Serial", InStock: true,
		CustomFields: []CustomField{{Label: "Region", Required: true, Type: "text"}},
	})
	doc.Orders = append(doc.Orders, Order{
		ID: "o1", CustomerEmail: "a@b.com", Total: "10.00",
		Status: StatusPendingPayment, Date: "2025-01-01T00:00:00Z", TrackID: 42,
	})

	require.NoError(t, s.Save(doc))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestLoadCorruptFileQuarantinesAndReturnsDefaults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.DataPath(), []byte("{not json"), 0o644))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Orders)

	matches, err := filepath.Glob(s.DataPath() + ".corrupt.*")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestSaveNeverLeavesTempBehind(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(DefaultDocument()))

	_, err := os.Stat(s.DataPath() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestUpdatePersistsMutation(t *testing.T) {
	s := newTestStore(t)

	err := s.Update(func(d *Document) error {
		d.Visits = append(d.Visits, Visit{ID: "v1", Path: "/", Date: "2025-01-01"})
		return nil
	})
	require.NoError(t, err)

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Visits, 1)
	assert.Equal(t, "v1", doc.Visits[0].ID)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(DefaultDocument()))

	err := s.Update(func(d *Document) error {
		d.Orders = append(d.Orders, Order{ID: "x"})
		return assert.AnError
	})
	require.Error(t, err)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Orders)
}

func TestCaptureBaseThenReset(t *testing.T) {
	s := newTestStore(t)

	doc := DefaultDocument()
	doc.Profile.Name = "Blessed"
	doc.Profile.SalesCount = 12
	doc.Products = append(doc.Products, Product{ID: "p1", Title: "Keep me", Price: "5.00"})
	doc.Categories = append(doc.Categories, Category{ID: "c1", Name: "Keys", Slug: "keys"})
	doc.Orders = append(doc.Orders, Order{ID: "o1", Status: StatusCompleted})
	doc.Tickets = append(doc.Tickets, Ticket{ID: "t1"})
	doc.Visits = append(doc.Visits, Visit{ID: "v1"})
	doc.Reviews = append(doc.Reviews, Review{ID: "r1"})
	require.NoError(t, s.Save(doc))

	require.NoError(t, s.CaptureBase())
	require.NoError(t, s.ResetToBase())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "Blessed", got.Profile.Name)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Keep me", got.Products[0].Title)
	require.Len(t, got.Categories, 1)
	assert.Empty(t, got.Orders)
	assert.Empty(t, got.Tickets)
	assert.Empty(t, got.Visits)
	assert.Empty(t, got.Reviews)
	assert.Equal(t, 0, got.Profile.SalesCount)
	assert.Equal(t, 1, got.Profile.ProductsCount)
}

func TestResetWithoutBaseRestoresFactoryDefaults(t *testing.T) {
	s := newTestStore(t)

	doc := DefaultDocument()
	doc.Products = append(doc.Products, Product{ID: "p1"})
	require.NoError(t, s.Save(doc))

	require.NoError(t, s.ResetToBase())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Products)
}

func TestRestoreRawRejectsInvalidJSON(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.RestoreRaw([]byte("nope")))
}

func TestRestoreRawRewritesBaseWithoutHistory(t *testing.T) {
	s := newTestStore(t)

	imported := DefaultDocument()
	imported.Products = append(imported.Products, Product{ID: "p9", Title: "Imported"})
	imported.Orders = append(imported.Orders, Order{ID: "old"})
	raw, err := json.Marshal(imported)
	require.NoError(t, err)

	require.NoError(t, s.RestoreRaw(raw))

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Orders, 1) // live data keeps imported history

	require.NoError(t, s.ResetToBase())
	doc, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Orders) // base snapshot does not
	require.Len(t, doc.Products, 1)
}
