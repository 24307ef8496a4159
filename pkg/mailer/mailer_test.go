package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/danghoang/sportygear-backend/pkg/config"
)

type captureSender struct {
	messages []*gomail.Message
}

func (c *captureSender) DialAndSend(msgs ...*gomail.Message) error {
	c.messages = append(c.messages, msgs...)
	return nil
}

func TestNewDisabledWithoutConfig(t *testing.T) {
	assert.Nil(t, New(config.SMTPConfig{}, nil))

	var m *Mailer
	require.NoError(t, m.SendReceipt(context.Background(), Receipt{}))
}

func TestSendReceipt(t *testing.T) {
	capture := &captureSender{}
	m := &Mailer{
		cfg:    config.SMTPConfig{Host: "smtp.test", DefaultFrom: "shop@example.com"},
		sender: capture,
	}

	receipt := Receipt{
		To:            "buyer@example.com",
		RecipientName: "Linh",
		OrderID:       "ORD1",
		OrderDate:     time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
		Lines: []ReceiptLine{
			{Name: "Home Jersey", Size: "M", Color: "Red", Quantity: 2, Subtotal: 100000},
		},
		Discount: 10000,
		Total:    90000,
	}

	require.NoError(t, m.SendReceipt(context.Background(), receipt))
	require.Len(t, capture.messages, 1)

	msg := capture.messages[0]
	assert.Equal(t, []string{"buyer@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Order confirmation ORD1"}, msg.GetHeader("Subject"))
}

func TestSendReceiptRequiresRecipient(t *testing.T) {
	m := &Mailer{cfg: config.SMTPConfig{Host: "smtp.test", DefaultFrom: "shop@example.com"}, sender: &captureSender{}}
	require.Error(t, m.SendReceipt(context.Background(), Receipt{}))
}
