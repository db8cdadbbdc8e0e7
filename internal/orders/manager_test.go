package orders

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/services/mailer"
	"github.com/pegasusmrx/store-backend/internal/store"
)

type fakePayments struct {
	payLink   string
	trackID   int64
	createErr error

	inquiryStatus map[int64]string
	inquiryErr    error
	inquiries     int
}

func (f *fakePayments) CreatePayment(ctx context.Context, amount, email, orderID string) (string, int64, error) {
	if f.createErr != nil {
		return "", 0, f.createErr
	}
	return f.payLink, f.trackID, nil
}

func (f *fakePayments) Inquiry(ctx context.Context, trackID int64) (string, error) {
	f.inquiries++
	if f.inquiryErr != nil {
		return "", f.inquiryErr
	}
	return f.inquiryStatus[trackID], nil
}

type fakeMailer struct {
	sent []mailer.OrderEvent
	err  error
}

func (f *fakeMailer) SendOrderEmail(order *store.Order, event mailer.OrderEvent, payLink string) error {
	f.sent = append(f.sent, event)
	return f.err
}

func setupManager(t *testing.T, payments *fakePayments) (*Manager, *store.Store, *fakeMailer) {
	t.Helper()
	dir := t.TempDir()
	s := store.New(filepath.Join(dir, "data.json"), filepath.Join(dir, "data.base.json"), zap.NewNop())
	m := &fakeMailer{}
	return NewManager(s, payments, m, zap.NewNop()), s, m
}

func cart() []store.OrderItem {
	return []store.OrderItem{{ProductID: "p1", Title: "License", Price: "10.00", Quantity: 2}}
}

func TestCreateOrder(t *testing.T) {
	payments := &fakePayments{payLink: "https://pay/x", trackID: 55}
	m, s, mail := setupManager(t, payments)

	res, err := m.Create(context.Background(), CreateRequest{
		CustomerEmail: "a@b.com",
		Items:         cart(),
		IP:            "1.2.3.4",
		Country:       "DE",
	})
	require.NoError(t, err)
	require.Nil(t, res.PayErr)

	assert.Equal(t, "20.00", res.Order.Total)
	assert.Equal(t, store.StatusPendingPayment, res.Order.Status)
	assert.NotEmpty(t, res.Order.ID)
	assert.Equal(t, "https://pay/x", res.PayLink)

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Orders, 1)
	assert.Equal(t, res.Order.ID, doc.Orders[0].ID)
	assert.Equal(t, int64(55), doc.Orders[0].TrackID)
	assert.Equal(t, "1.2.3.4", doc.Orders[0].IP)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, mailer.EventPending, mail.sent[0])
}

func TestCreateOrderEmptyCart(t *testing.T) {
	m, _, _ := setupManager(t, &fakePayments{})
	_, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com"})
	require.Error(t, err)
}

func TestCreateOrderInvalidPrice(t *testing.T) {
	m, _, _ := setupManager(t, &fakePayments{})
	_, err := m.Create(context.Background(), CreateRequest{
		CustomerEmail: "a@b.com",
		Items:         []store.OrderItem{{ProductID: "p1", Price: "ten", Quantity: 1}},
	})
	require.Error(t, err)
}

func TestCreateOrderSurvivesPaymentFailure(t *testing.T) {
	payments := &fakePayments{createErr: errors.New("gateway down")}
	m, s, _ := setupManager(t, payments)

	res, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)
	require.Error(t, res.PayErr)
	assert.Empty(t, res.PayLink)

	// Order is persisted even though no payment link exists.
	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Orders, 1)
	assert.Equal(t, store.StatusPendingPayment, doc.Orders[0].Status)
	assert.Zero(t, doc.Orders[0].TrackID)
}

func TestCreateOrderSurvivesMailFailure(t *testing.T) {
	m, s, mail := setupManager(t, &fakePayments{payLink: "l", trackID: 1})
	mail.err = errors.New("smtp down")

	_, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Orders, 1)
}

func TestApplyPaymentResultPaid(t *testing.T) {
	m, s, mail := setupManager(t, &fakePayments{payLink: "l", trackID: 9})

	res, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)

	require.NoError(t, m.ApplyPaymentResult(res.Order.ID, "Paid"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, doc.Orders[0].Status)
	assert.Equal(t, 1, doc.Profile.SalesCount)
	assert.Equal(t, []mailer.OrderEvent{mailer.EventPending, mailer.EventCompleted}, mail.sent)
}

func TestApplyPaymentResultIdempotent(t *testing.T) {
	m, s, mail := setupManager(t, &fakePayments{payLink: "l", trackID: 9})

	res, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)

	require.NoError(t, m.ApplyPaymentResult(res.Order.ID, "Paid"))
	require.NoError(t, m.ApplyPaymentResult(res.Order.ID, "Paid"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Profile.SalesCount, "repeated callback must not double-count")

	// Delivered email goes out once.
	count := 0
	for _, e := range mail.sent {
		if e == mailer.EventCompleted {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApplyPaymentResultNeverRevertsCompleted(t *testing.T) {
	m, s, _ := setupManager(t, &fakePayments{payLink: "l", trackID: 9})

	res, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)

	require.NoError(t, m.ApplyPaymentResult(res.Order.ID, "Paid"))
	require.NoError(t, m.ApplyPaymentResult(res.Order.ID, "Expired"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, doc.Orders[0].Status)
}

func TestApplyPaymentResultCanceled(t *testing.T) {
	m, s, _ := setupManager(t, &fakePayments{payLink: "l", trackID: 9})

	res, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)

	require.NoError(t, m.ApplyPaymentResult(res.Order.ID, "Expired"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, store.StatusCanceled, doc.Orders[0].Status)
	assert.Equal(t, 0, doc.Profile.SalesCount)
}

func TestApplyPaymentResultUnknownStatusIgnored(t *testing.T) {
	m, s, _ := setupManager(t, &fakePayments{payLink: "l", trackID: 9})

	res, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)

	require.NoError(t, m.ApplyPaymentResult(res.Order.ID, "Underpaid"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, store.StatusPendingPayment, doc.Orders[0].Status)
}

func TestApplyPaymentResultUnknownOrder(t *testing.T) {
	m, _, _ := setupManager(t, &fakePayments{})
	err := m.ApplyPaymentResult("missing", "Paid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncPending(t *testing.T) {
	payments := &fakePayments{payLink: "l", trackID: 0, inquiryStatus: map[int64]string{
		101: "Paid",
		102: "Expired",
		103: "Waiting",
	}}
	m, s, _ := setupManager(t, payments)

	seed := store.DefaultDocument()
	seed.Orders = []store.Order{
		{ID: "a", Status: store.StatusPendingPayment, TrackID: 101, CustomerEmail: "a@b.com", Total: "1.00"},
		{ID: "b", Status: store.StatusPendingPayment, TrackID: 102, CustomerEmail: "a@b.com", Total: "1.00"},
		{ID: "c", Status: store.StatusPendingPayment, TrackID: 103, CustomerEmail: "a@b.com", Total: "1.00"},
		{ID: "d", Status: store.StatusPendingPayment, CustomerEmail: "a@b.com", Total: "1.00"}, // no trackId: skipped
		{ID: "e", Status: store.StatusCompleted, TrackID: 104, CustomerEmail: "a@b.com", Total: "1.00"},
	}
	require.NoError(t, s.Save(seed))

	updated, err := m.SyncPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, 3, payments.inquiries)

	doc, err := s.Load()
	require.NoError(t, err)
	byID := map[string]store.OrderStatus{}
	for _, o := range doc.Orders {
		byID[o.ID] = o.Status
	}
	assert.Equal(t, store.StatusCompleted, byID["a"])
	assert.Equal(t, store.StatusCanceled, byID["b"])
	assert.Equal(t, store.StatusPendingPayment, byID["c"])
	assert.Equal(t, store.StatusPendingPayment, byID["d"])
	assert.Equal(t, 1, doc.Profile.SalesCount)
}

func TestDeleteAndClear(t *testing.T) {
	m, s, _ := setupManager(t, &fakePayments{payLink: "l"})

	r1, err := m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)
	_, err = m.Create(context.Background(), CreateRequest{CustomerEmail: "a@b.com", Items: cart()})
	require.NoError(t, err)

	require.NoError(t, m.Delete(r1.Order.ID))
	assert.ErrorIs(t, m.Delete(r1.Order.ID), ErrNotFound)

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Orders, 1)

	require.NoError(t, m.ClearAll())
	doc, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Orders)
}
