package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/pkg/enums"
)

// Payment tracks an external payment attempt for an order. At most one row
// exists per order; provider callbacks update it in place, last write wins.
type Payment struct {
	ID            uint                `gorm:"column:id;primaryKey"`
	OrderID       string              `gorm:"column:order_id;not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	VoucherID     *uint               `gorm:"column:voucher_id"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount        int64               `gorm:"column:amount;not null"`
	TransactionID *string             `gorm:"column:transaction_id"`
	RawPayload    *string             `gorm:"column:raw_payload"`
	PaidAt        *time.Time          `gorm:"column:paid_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
