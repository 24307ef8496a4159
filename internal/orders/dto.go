package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/pkg/enums"
)

// LineItemInput is one requested order line.
type LineItemInput struct {
	VariantID uint
	Quantity  int
}

// CreateInput carries everything needed to materialize an order.
type CreateInput struct {
	OrderID       string
	UserID        uuid.UUID
	OrderDate     time.Time
	Items         []LineItemInput
	VoucherCode   string
	RecipientName string
	Phone         string
	Address       string
	Notes         *string
	PaymentMethod enums.PaymentMethod
}

// ListFilters describe the optional filters on order listings.
type ListFilters struct {
	Status *enums.OrderStatus
	UserID *uuid.UUID
}
