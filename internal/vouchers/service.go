package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

// Service exposes voucher validation and admin CRUD.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Validate(ctx context.Context, code string, orderTotal int64, now time.Time) (*models.Voucher, error)
	Discount(voucher *models.Voucher, orderTotal int64) int64
	Redeem(ctx context.Context, id uint) error
	Release(ctx context.Context, id uint) error
	Create(ctx context.Context, input CreateInput) (*models.Voucher, error)
	Update(ctx context.Context, id uint, input UpdateInput) (*models.Voucher, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*models.Voucher, error)
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)
	List(ctx context.Context, params pagination.Params) ([]models.Voucher, pagination.Meta, error)
}

// CreateInput captures the fields needed to create a voucher.
type CreateInput struct {
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue int64
	MinOrderTotal int64
	StartsAt      time.Time
	EndsAt        time.Time
	UsageLimit    int
}

// UpdateInput carries optional updates for an existing voucher.
type UpdateInput struct {
	DiscountValue *int64
	MinOrderTotal *int64
	StartsAt      *time.Time
	EndsAt        *time.Time
	UsageLimit    *int
	Status        *enums.VoucherStatus
}

type service struct {
	repo Repository
}

// NewService builds the voucher service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

// Validate checks the voucher window, status, budget, and minimum order total.
// It does not consume a use; Redeem happens inside the checkout transaction.
func (s *service) Validate(ctx context.Context, code string, orderTotal int64, now time.Time) (*models.Voucher, error) {
	voucher, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if voucher.Status != enums.VoucherStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher is not active")
	}
	if now.Before(voucher.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher is not yet valid")
	}
	if now.After(voucher.EndsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher has expired")
	}
	if voucher.Remaining() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeVoucherLimit, "voucher usage limit reached")
	}
	if orderTotal < voucher.MinOrderTotal {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order total below voucher minimum of %d", voucher.MinOrderTotal))
	}
	return voucher, nil
}

// Discount computes the discount amount for an order total. Percentage values
// round down to the nearest currency unit and never exceed the total.
func (s *service) Discount(voucher *models.Voucher, orderTotal int64) int64 {
	if voucher == nil || orderTotal <= 0 {
		return 0
	}

	var discount int64
	switch voucher.DiscountType {
	case enums.DiscountTypePercentage:
		discount = decimal.NewFromInt(orderTotal).
			Mul(decimal.NewFromInt(voucher.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	case enums.DiscountTypeFixed:
		discount = voucher.DiscountValue
	}

	if discount > orderTotal {
		discount = orderTotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// Redeem consumes one use of the voucher's budget.
func (s *service) Redeem(ctx context.Context, id uint) error {
	return s.repo.Redeem(ctx, id)
}

// Release returns one use to the voucher's budget.
func (s *service) Release(ctx context.Context, id uint) error {
	return s.repo.Release(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Voucher, error) {
	if input.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher code required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", input.DiscountType))
	}
	if input.DiscountValue <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.DiscountType == enums.DiscountTypePercentage && input.DiscountValue > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher end must be after start")
	}
	if input.UsageLimit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}

	return s.repo.Create(ctx, &models.Voucher{
		Code:          input.Code,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		MinOrderTotal: input.MinOrderTotal,
		StartsAt:      input.StartsAt,
		EndsAt:        input.EndsAt,
		UsageLimit:    input.UsageLimit,
		Status:        enums.VoucherStatusActive,
	})
}

func (s *service) Update(ctx context.Context, id uint, input UpdateInput) (*models.Voucher, error) {
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DiscountValue != nil {
		if *input.DiscountValue <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
		}
		voucher.DiscountValue = *input.DiscountValue
	}
	if input.MinOrderTotal != nil {
		voucher.MinOrderTotal = *input.MinOrderTotal
	}
	if input.StartsAt != nil {
		voucher.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		voucher.EndsAt = *input.EndsAt
	}
	if !voucher.EndsAt.After(voucher.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher end must be after start")
	}
	if input.UsageLimit != nil {
		if *input.UsageLimit < voucher.UsedCount {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit cannot drop below redeemed count")
		}
		voucher.UsageLimit = *input.UsageLimit
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid voucher status %q", *input.Status))
		}
		voucher.Status = *input.Status
	}

	if err := s.repo.Update(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uint) (*models.Voucher, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Voucher, pagination.Meta, error) {
	vouchers, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return vouchers, pagination.NewMeta(params, total), nil
}
