package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/danghoang/sportygear-backend/pkg/config"
	"github.com/danghoang/sportygear-backend/pkg/logger"
)

type sender interface {
	DialAndSend(...*gomail.Message) error
}

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	cfg    config.SMTPConfig
	sender sender
	logg   *logger.Logger
}

// ReceiptLine is one purchased item on the receipt.
type ReceiptLine struct {
	Name     string
	Size     string
	Color    string
	Quantity int
	Subtotal int64
}

// Receipt carries everything needed to render an order confirmation email.
type Receipt struct {
	To            string
	RecipientName string
	OrderID       string
	OrderDate     time.Time
	Lines         []ReceiptLine
	Discount      int64
	Total         int64
}

// New constructs a Mailer from SMTP settings. Returns nil when mail is not configured;
// callers treat a nil Mailer as a no-op.
func New(cfg config.SMTPConfig, logg *logger.Logger) *Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return &Mailer{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logg:   logg,
	}
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<h2>Thank you for your order, {{.RecipientName}}!</h2>
<p>Order <strong>{{.OrderID}}</strong> placed on {{.OrderDate.Format "02 Jan 2006 15:04"}}.</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Item</th><th>Size</th><th>Color</th><th>Qty</th><th>Subtotal</th></tr>
  {{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Size}}</td><td>{{.Color}}</td><td>{{.Quantity}}</td><td>{{.Subtotal}}</td></tr>
  {{end}}
</table>
{{if gt .Discount 0}}<p>Discount: -{{.Discount}}</p>{{end}}
<p><strong>Total: {{.Total}}</strong></p>
`))

// SendReceipt renders and sends the order confirmation email.
func (m *Mailer) SendReceipt(ctx context.Context, receipt Receipt) error {
	if m == nil {
		return nil
	}
	if receipt.To == "" {
		return fmt.Errorf("recipient email is required")
	}

	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, receipt); err != nil {
		return fmt.Errorf("rendering receipt: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.DefaultFrom)
	msg.SetHeader("To", receipt.To)
	msg.SetHeader("Subject", fmt.Sprintf("Order confirmation %s", receipt.OrderID))
	msg.SetBody("text/html", body.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending receipt: %w", err)
	}
	if m.logg != nil {
		m.logg.Info(m.logg.WithOrderID(ctx, receipt.OrderID), "order receipt sent")
	}
	return nil
}
