package models

import (
	"time"

	"github.com/danghoang/sportygear-backend/pkg/enums"
)

// Voucher is a discount code with a redemption budget.
// Invariant: UsedCount never exceeds UsageLimit.
type Voucher struct {
	ID            uint                `gorm:"column:id;primaryKey"`
	Code          string              `gorm:"column:code;uniqueIndex;not null"`
	DiscountType  enums.DiscountType  `gorm:"column:discount_type;type:text;not null"`
	DiscountValue int64               `gorm:"column:discount_value;not null"`
	MinOrderTotal int64               `gorm:"column:min_order_total;not null;default:0"`
	StartsAt      time.Time           `gorm:"column:starts_at;not null"`
	EndsAt        time.Time           `gorm:"column:ends_at;not null"`
	UsageLimit    int                 `gorm:"column:usage_limit;not null"`
	UsedCount     int                 `gorm:"column:used_count;not null;default:0"`
	Status        enums.VoucherStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining reports how many redemptions are left.
func (v Voucher) Remaining() int {
	left := v.UsageLimit - v.UsedCount
	if left < 0 {
		return 0
	}
	return left
}
