package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/pkg/enums"
)

// Order is the header of an order aggregate. The id is supplied by the
// client or payment provider, so it is a string primary key rather than a
// generated one; duplicate submissions fail on the key.
type Order struct {
	ID            string            `gorm:"column:id;primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	VoucherID     *uint             `gorm:"column:voucher_id;index"`
	OrderDate     time.Time         `gorm:"column:order_date;not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Total         int64             `gorm:"column:total;not null"`
	RecipientName string            `gorm:"column:recipient_name;not null"`
	Phone         string            `gorm:"column:phone;not null"`
	Address       string            `gorm:"column:address;not null"`
	Notes         *string           `gorm:"column:notes"`
	User          *User             `gorm:"foreignKey:UserID"`
	Voucher       *Voucher          `gorm:"foreignKey:VoucherID"`
	Products      []OrderProduct    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment       *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderProduct is an immutable line item: one row per (order, variant) with
// the price snapshotted at purchase time.
type OrderProduct struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	OrderID     string    `gorm:"column:order_id;not null;uniqueIndex:uniq_order_variant"`
	VariantID   uint      `gorm:"column:variant_id;not null;uniqueIndex:uniq_order_variant"`
	Quantity    int       `gorm:"column:quantity;not null"`
	PriceAtTime int64     `gorm:"column:price_at_time;not null"`
	Variant     *Variant  `gorm:"foreignKey:VariantID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// OrderReview holds one review per (order, variant, user).
type OrderReview struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	OrderID   string    `gorm:"column:order_id;not null;uniqueIndex:uniq_order_variant_user"`
	VariantID uint      `gorm:"column:variant_id;not null;uniqueIndex:uniq_order_variant_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uniq_order_variant_user"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PendingOrder stages a checkout payload for redirect-based payment flows.
// The order is only materialized when the provider confirms payment; the
// first successful callback consumes the row.
type PendingOrder struct {
	OrderID   string    `gorm:"column:order_id;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
