package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pegasusmrx/store-backend/internal/store"
)

type SupportHandler struct {
	Store *store.Store
}

func NewSupportHandler(s *store.Store) *SupportHandler {
	return &SupportHandler{Store: s}
}

func ticketID() string {
	return fmt.Sprintf("TCK-%s", strings.ToUpper(shortID()))
}

func (h *SupportHandler) Get(c *fiber.Ctx) error {
	id := c.Query("id")

	var out interface{}
	err := h.Store.View(func(d *store.Document) error {
		if id == "" {
			out = d.Tickets
			return nil
		}
		for _, t := range d.Tickets {
			if t.ID == id {
				out = t
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load tickets")
	}
	if id != "" && out == nil {
		return fail(c, fiber.StatusNotFound, "Ticket not found")
	}
	return ok(c, out)
}

type createTicketReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *SupportHandler) Create(c *fiber.Ctx) error {
	var req createTicketReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	errs := FieldErrors{}
	if strings.TrimSpace(req.Email) == "" {
		errs.Add("email", "Email is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		errs.Add("message", "Message is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	user := strings.TrimSpace(req.Name)
	if user == "" {
		user = "Guest"
	}

	now := time.Now().UTC()
	ticket := store.Ticket{
		ID:       ticketID(),
		User:     user,
		Email:    strings.TrimSpace(req.Email),
		Subject:  req.Subject,
		Message:  req.Message,
		Status:   store.TicketPending,
		Priority: "medium",
		Date:     now.Format(time.RFC3339),
		Messages: []store.TicketMessage{
			{Sender: "user", Text: req.Message, Time: now.Format(time.RFC3339)},
		},
	}

	err := h.Store.Update(func(d *store.Document) error {
		d.Tickets = append([]store.Ticket{ticket}, d.Tickets...)
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create ticket")
	}
	return ok(c, ticket)
}

type updateTicketReq struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Reply    string `json:"reply"`
	Sender   string `json:"sender"`
}

// Update applies status/priority changes and appends replies. Reply direction
// drives the status machine: an admin reply moves open tickets to pending, a
// user reply reopens anything.
func (h *SupportHandler) Update(c *fiber.Ctx) error {
	var req updateTicketReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if req.ID == "" {
		return fail(c, fiber.StatusBadRequest, "Ticket ID required")
	}

	var updated *store.Ticket
	err := h.Store.Update(func(d *store.Document) error {
		for i := range d.Tickets {
			t := &d.Tickets[i]
			if t.ID != req.ID {
				continue
			}

			if req.Status != "" {
				t.Status = store.TicketStatus(req.Status)
			}
			if req.Priority != "" {
				t.Priority = req.Priority
			}

			if req.Reply != "" {
				sender := req.Sender
				if sender == "" {
					sender = "admin"
				}
				t.Messages = append(t.Messages, store.TicketMessage{
					Sender: sender,
					Text:   req.Reply,
					Time:   time.Now().UTC().Format(time.RFC3339),
				})

				switch sender {
				case "admin":
					if t.Status == store.TicketOpen {
						t.Status = store.TicketPending
					}
				case "user":
					t.Status = store.TicketOpen
				}
			}

			copied := *t
			updated = &copied
			return nil
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to update ticket")
	}
	if updated == nil {
		return fail(c, fiber.StatusNotFound, "Ticket not found")
	}
	return ok(c, updated)
}

func (h *SupportHandler) Delete(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "Ticket ID required")
	}

	found := false
	err := h.Store.Update(func(d *store.Document) error {
		kept := d.Tickets[:0]
		for _, t := range d.Tickets {
			if t.ID == id {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		d.Tickets = kept
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to delete ticket")
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "Ticket not found")
	}
	return ok(c, fiber.Map{"deleted": id})
}
