package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/services/mailer"
	"github.com/pegasusmrx/store-backend/internal/store"
)

// PaymentProvider is the slice of the processor API the lifecycle needs.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, amount, email, orderID string) (payLink string, trackID int64, err error)
	Inquiry(ctx context.Context, trackID int64) (status string, err error)
}

var ErrNotFound = errors.New("order not found")

// Manager drives orders through Pending Payment into a terminal state. All
// document access goes through the store's serialized Update/View.
type Manager struct {
	Store    *store.Store
	Payments PaymentProvider
	Mailer   mailer.Mailer
	log      *zap.Logger
}

func NewManager(s *store.Store, payments PaymentProvider, m mailer.Mailer, log *zap.Logger) *Manager {
	return &Manager{Store: s, Payments: payments, Mailer: m, log: log}
}

// CreateRequest is the validated checkout payload.
type CreateRequest struct {
	CustomerEmail    string
	CustomerTelegram string
	Items            []store.OrderItem
	IP               string
	Country          string
}

// CreateResult carries the persisted order plus the payment link outcome.
// PayErr is non-nil when the order exists but no payment link could be
// obtained; the caller reports that to the customer without undoing the order.
type CreateResult struct {
	Order   store.Order
	PayLink string
	PayErr  error
}

// Create validates the cart, persists the order with status Pending Payment
// before any external call, then best-effort attaches a payment link and sends
// the pending notification email.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}
	if req.CustomerEmail == "" {
		return nil, fmt.Errorf("customer email is required")
	}

	total := decimal.Zero
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("item %d: quantity must be at least 1", i)
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid price %q", i, item.Price)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := store.Order{
		ID:               uuid.NewString(),
		CustomerEmail:    req.CustomerEmail,
		CustomerTelegram: req.CustomerTelegram,
		Items:            req.Items,
		Total:            total.StringFixed(2),
		Status:           store.StatusPendingPayment,
		Date:             time.Now().UTC().Format(time.RFC3339),
		IP:               req.IP,
		Country:          req.Country,
	}

	err := m.Store.Update(func(d *store.Document) error {
		d.Orders = append([]store.Order{order}, d.Orders...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &CreateResult{Order: order}

	payLink, trackID, payErr := m.Payments.CreatePayment(ctx, order.Total, order.CustomerEmail, order.ID)
	if payErr != nil {
		// The order stands so support can follow up manually.
		m.log.Error("payment link request failed",
			zap.String("order", order.ID), zap.Error(payErr))
		res.PayErr = payErr
	} else {
		res.PayLink = payLink
		res.Order.TrackID = trackID
		res.Order.PayLink = payLink
		if err := m.attachPayment(order.ID, trackID, payLink); err != nil {
			m.log.Error("failed to save trackId",
				zap.String("order", order.ID), zap.Error(err))
		}
	}

	if err := m.Mailer.SendOrderEmail(&res.Order, mailer.EventPending, payLink); err != nil {
		m.log.Error("pending email failed", zap.String("order", order.ID), zap.Error(err))
	}

	return res, nil
}

func (m *Manager) attachPayment(orderID string, trackID int64, payLink string) error {
	return m.Store.Update(func(d *store.Document) error {
		for i := range d.Orders {
			if d.Orders[i].ID == orderID {
				d.Orders[i].TrackID = trackID
				d.Orders[i].PayLink = payLink
				return nil
			}
		}
		return ErrNotFound
	})
}

// mapStatus translates the processor vocabulary onto our status enum. Unknown
// statuses map to the empty string and are ignored.
func mapStatus(external string) store.OrderStatus {
	switch external {
	case "Paid", "Complete":
		return store.StatusCompleted
	case "Expired", "Canceled":
		return store.StatusCanceled
	default:
		return ""
	}
}

// ApplyPaymentResult transitions an order based on a processor status, either
// from the webhook callback or from the reconciliation sweep. It is
// idempotent: terminal orders are left untouched and the sales counter only
// moves on the first Pending Payment -> Completed transition, so a webhook and
// a sweep observing the same payment cannot double-count.
func (m *Manager) ApplyPaymentResult(orderID, externalStatus string) error {
	next := mapStatus(externalStatus)
	if next == "" {
		m.log.Warn("ignoring unknown payment status",
			zap.String("order", orderID), zap.String("status", externalStatus))
		return nil
	}

	var completedOrder *store.Order
	err := m.Store.Update(func(d *store.Document) error {
		for i := range d.Orders {
			if d.Orders[i].ID != orderID {
				continue
			}
			cur := d.Orders[i].Status
			if cur.Terminal() {
				return nil
			}
			m.log.Info("order status change",
				zap.String("order", orderID),
				zap.String("from", string(cur)),
				zap.String("to", string(next)),
				zap.String("gateway", externalStatus))
			d.Orders[i].Status = next
			if next == store.StatusCompleted {
				d.Profile.SalesCount++
				o := d.Orders[i]
				completedOrder = &o
			}
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return err
	}

	if completedOrder != nil {
		if err := m.Mailer.SendOrderEmail(completedOrder, mailer.EventCompleted, ""); err != nil {
			m.log.Error("delivered email failed", zap.String("order", orderID), zap.Error(err))
		}
	}
	return nil
}

// SyncPending polls the processor for every order still Pending Payment that
// has a trackId and applies the result through the same guarded transition.
// Returns how many orders changed status.
func (m *Manager) SyncPending(ctx context.Context) (int, error) {
	type candidate struct {
		id      string
		trackID int64
	}
	var pending []candidate

	err := m.Store.View(func(d *store.Document) error {
		for _, o := range d.Orders {
			if o.Status == store.StatusPendingPayment && o.TrackID != 0 {
				pending = append(pending, candidate{id: o.ID, trackID: o.TrackID})
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.log.Info("syncing pending orders", zap.Int("count", len(pending)))

	updated := 0
	for _, c := range pending {
		status, err := m.Payments.Inquiry(ctx, c.trackID)
		if err != nil {
			m.log.Error("inquiry failed", zap.String("order", c.id), zap.Error(err))
			continue
		}
		if mapStatus(status) == "" {
			continue
		}
		if err := m.ApplyPaymentResult(c.id, status); err != nil {
			m.log.Error("sync transition failed", zap.String("order", c.id), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}

// Delete removes one order. Removal is immediate and unrecoverable.
func (m *Manager) Delete(orderID string) error {
	return m.Store.Update(func(d *store.Document) error {
		for i := range d.Orders {
			if d.Orders[i].ID == orderID {
				d.Orders = append(d.Orders[:i], d.Orders[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

// ClearAll wipes the order log.
func (m *Manager) ClearAll() error {
	return m.Store.Update(func(d *store.Document) error {
		d.Orders = []store.Order{}
		return nil
	})
}
