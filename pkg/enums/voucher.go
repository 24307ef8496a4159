package enums

// DiscountType selects how a voucher's value is applied to an order total.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (d DiscountType) IsValid() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFixed
}

// VoucherStatus marks whether a voucher is open for redemption.
type VoucherStatus string

const (
	VoucherStatusActive   VoucherStatus = "active"
	VoucherStatusInactive VoucherStatus = "inactive"
)

func (s VoucherStatus) IsValid() bool {
	return s == VoucherStatusActive || s == VoucherStatusInactive
}
