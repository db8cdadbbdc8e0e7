package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/orders"
	"github.com/pegasusmrx/store-backend/internal/store"
)

type OrderHandler struct {
	Store   *store.Store
	Manager *orders.Manager
	Log     *zap.Logger
}

func NewOrderHandler(s *store.Store, m *orders.Manager, log *zap.Logger) *OrderHandler {
	return &OrderHandler{Store: s, Manager: m, Log: log}
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	var out []store.Order
	err := h.Store.View(func(d *store.Document) error {
		out = d.Orders
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load orders")
	}
	return ok(c, out)
}

type createOrderReq struct {
	CustomerEmail    string            `json:"customerEmail"`
	CustomerTelegram string            `json:"customerTelegram"`
	Items            []store.OrderItem `json:"items"`
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	errs := FieldErrors{}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		errs.Add("customerEmail", "Email is required")
	} else if !strings.Contains(req.CustomerEmail, "@") {
		errs.Add("customerEmail", "Invalid email format")
	}
	if len(req.Items) == 0 {
		errs.Add("items", "Cart is empty")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	res, err := h.Manager.Create(c.Context(), orders.CreateRequest{
		CustomerEmail:    strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerTelegram: strings.TrimSpace(req.CustomerTelegram),
		Items:            req.Items,
		IP:               clientIP(c),
		Country:          clientCountry(c),
	})
	if err != nil {
		h.Log.Error("order creation failed", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	resp := fiber.Map{
		"order":   res.Order,
		"payLink": res.PayLink,
	}
	if res.PayErr != nil {
		// The order exists; the UI tells the customer payment setup failed.
		resp["paymentError"] = "Payment generation failed"
	}
	return ok(c, resp)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Manager.Delete(id); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Order not found")
		}
		return fail(c, fiber.StatusInternalServerError, "Failed to delete order")
	}
	return ok(c, fiber.Map{"deleted": id})
}

func (h *OrderHandler) Clear(c *fiber.Ctx) error {
	if err := h.Manager.ClearAll(); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to clear orders")
	}
	return ok(c, fiber.Map{"message": "All orders cleared"})
}

// Sync reconciles every pending order against the payment processor. Admin
// triggers it from the dashboard; there is no server-resident scheduler.
func (h *OrderHandler) Sync(c *fiber.Ctx) error {
	updated, err := h.Manager.SyncPending(c.Context())
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to sync orders")
	}
	return ok(c, fiber.Map{"updated": updated})
}

type callbackReq struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Callback is the inbound webhook from the payment processor.
func (h *OrderHandler) Callback(c *fiber.Ctx) error {
	var req callbackReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid payload")
	}
	if req.OrderID == "" {
		return fail(c, fiber.StatusBadRequest, "No orderId provided")
	}

	if err := h.Manager.ApplyPaymentResult(req.OrderID, req.Status); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Order not found")
		}
		h.Log.Error("callback processing failed", zap.String("order", req.OrderID), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	return ok(c, fiber.Map{"orderId": req.OrderID})
}
