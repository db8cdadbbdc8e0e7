package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/store"
)

// OrderEvent names the lifecycle moment an email is sent for.
type OrderEvent string

const (
	EventPending   OrderEvent = "Pending"
	EventCompleted OrderEvent = "Completed"
)

// Mailer sends customer-facing order notifications. Implementations must not
// be relied on for correctness: callers treat every send as best-effort.
type Mailer interface {
	SendOrderEmail(order *store.Order, event OrderEvent, payLink string) error
}

type SMTPMailer struct {
	Host    string
	Port    string
	User    string
	Pass    string
	From    string
	Store   string
	AdminTo string
	log     *zap.Logger
	tmpl    *template.Template
}

func NewSMTP(host, port, user, pass, from, storeName, adminTo string, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		Host:    host,
		Port:    port,
		User:    user,
		Pass:    pass,
		From:    from,
		Store:   storeName,
		AdminTo: adminTo,
		log:     log,
		tmpl:    template.Must(template.New("order").Parse(orderTemplate)),
	}
}

type templateData struct {
	Store     string
	Completed bool
	Order     *store.Order
	PayLink   string
	Year      int
}

// SendOrderEmail renders and sends the customer message and, on completion,
// an internal sales notification to the merchant inbox.
func (m *SMTPMailer) SendOrderEmail(order *store.Order, event OrderEvent, payLink string) error {
	if m.Host == "" {
		m.log.Warn("smtp not configured, skipping order email", zap.String("order", order.ID))
		return nil
	}

	completed := event == EventCompleted
	shortID := order.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	subject := fmt.Sprintf("Action Required: Complete Your Order - #%s", shortID)
	if completed {
		subject = fmt.Sprintf("Order Delivered - #%s", shortID)
	}

	var body bytes.Buffer
	err := m.tmpl.Execute(&body, templateData{
		Store:     m.Store,
		Completed: completed,
		Order:     order,
		PayLink:   payLink,
		Year:      time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render order email: %w", err)
	}

	if err := m.send(order.CustomerEmail, subject, body.String()); err != nil {
		return fmt.Errorf("send to customer: %w", err)
	}
	m.log.Info("order email sent",
		zap.String("order", order.ID), zap.String("event", string(event)))

	if completed && m.AdminTo != "" {
		notice := fmt.Sprintf("New sale: order #%s for $%s (%s)", order.ID, order.Total, order.CustomerEmail)
		if err := m.send(m.AdminTo, "New Sale - #"+shortID, "<p>"+template.HTMLEscapeString(notice)+"</p>"); err != nil {
			m.log.Error("sales notification failed", zap.String("order", order.ID), zap.Error(err))
		}
	}
	return nil
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %q <%s>\r\n", m.Store, m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := m.Host + ":" + m.Port
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String()))
}

const orderTemplate = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="margin: 0;">{{.Store}}</h1>
  {{if .Completed}}
  <h2>&#10003; Order Delivered!</h2>
  <p>Your order has been successfully processed and delivered. Below are your purchase details.</p>
  {{else}}
  <h2>Order Received - Pending Payment</h2>
  <p>Your order is currently on hold. Please complete the payment to receive your products instantly.</p>
  {{if .PayLink}}<p><a href="{{.PayLink}}">Complete Payment Now</a></p>{{end}}
  {{end}}
  <h3>Order Summary</h3>
  <p><strong>Order ID:</strong> #{{.Order.ID}}<br>
     <strong>Date:</strong> {{.Order.Date}}<br>
     <strong>Status:</strong> {{.Order.Status}}</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><th align="left">Product</th><th align="center">Qty</th><th align="right">Price</th></tr>
    {{range .Order.Items}}
    <tr>
      <td>{{.Title}}
        {{range $label, $value := .CustomValues}}<div style="font-size: 12px;">{{$label}}: {{$value}}</div>{{end}}
      </td>
      <td align="center">{{.Quantity}}</td>
      <td align="right">${{.Price}}</td>
    </tr>
    {{end}}
    <tr><td colspan="2" align="right"><strong>Total</strong></td><td align="right"><strong>${{.Order.Total}}</strong></td></tr>
  </table>
  <p style="font-size: 12px; color: #888;">&copy; {{.Year}} {{.Store}}. This is an automated message, please do not reply.</p>
</div>`
