package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user shopping cart; one active cart per user.
type Cart struct {
	ID        uint       `gorm:"column:id;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem references a variant with a quantity; unique per (cart, variant).
type CartItem struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	CartID    uint      `gorm:"column:cart_id;not null;uniqueIndex:uniq_cart_variant"`
	VariantID uint      `gorm:"column:variant_id;not null;uniqueIndex:uniq_cart_variant"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Variant   *Variant  `gorm:"foreignKey:VariantID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Wishlist is the per-user saved-items collection.
type Wishlist struct {
	ID        uint           `gorm:"column:id;primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// WishlistItem references a variant; unique per (wishlist, variant).
type WishlistItem struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	WishlistID uint      `gorm:"column:wishlist_id;not null;uniqueIndex:uniq_wishlist_variant"`
	VariantID  uint      `gorm:"column:variant_id;not null;uniqueIndex:uniq_wishlist_variant"`
	Variant    *Variant  `gorm:"foreignKey:VariantID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
