package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestValidate(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	created, err := repo.Create(ctx, &models.Voucher{
		Code:          "WELCOME10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
		MinOrderTotal: 100000,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(time.Hour),
		UsageLimit:    5,
		Status:        enums.VoucherStatusActive,
	})
	require.NoError(t, err)

	voucher, err := svc.Validate(ctx, "WELCOME10", 150000, now)
	require.NoError(t, err)
	assert.Equal(t, created.ID, voucher.ID)

	_, err = svc.Validate(ctx, "WELCOME10", 50000, now)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Validate(ctx, "WELCOME10", 150000, now.Add(2*time.Hour))
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Validate(ctx, "NOPE", 150000, now)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestValidateInactiveAndExhausted(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.Create(ctx, &models.Voucher{
		Code:          "PAUSED",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 5000,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(time.Hour),
		UsageLimit:    5,
		Status:        enums.VoucherStatusInactive,
	})
	require.NoError(t, err)

	_, err = svc.Validate(ctx, "PAUSED", 100000, now)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = repo.Create(ctx, &models.Voucher{
		Code:          "DRAINED",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 5000,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(time.Hour),
		UsageLimit:    2,
		UsedCount:     2,
		Status:        enums.VoucherStatusActive,
	})
	require.NoError(t, err)

	_, err = svc.Validate(ctx, "DRAINED", 100000, now)
	requireCode(t, err, pkgerrors.CodeVoucherLimit)
}

func TestDiscount(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	percentage := &models.Voucher{DiscountType: enums.DiscountTypePercentage, DiscountValue: 15}
	assert.Equal(t, int64(15000), svc.Discount(percentage, 100000))
	// rounds down
	assert.Equal(t, int64(14), svc.Discount(percentage, 99))

	fixed := &models.Voucher{DiscountType: enums.DiscountTypeFixed, DiscountValue: 30000}
	assert.Equal(t, int64(30000), svc.Discount(fixed, 100000))
	// capped at the order total
	assert.Equal(t, int64(20000), svc.Discount(fixed, 20000))

	assert.Equal(t, int64(0), svc.Discount(nil, 100000))
	assert.Equal(t, int64(0), svc.Discount(fixed, 0))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Create(ctx, CreateInput{
		Code:          "OVER",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 120,
		StartsAt:      now,
		EndsAt:        now.Add(time.Hour),
		UsageLimit:    1,
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, CreateInput{
		Code:          "BACKWARDS",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 1000,
		StartsAt:      now.Add(time.Hour),
		EndsAt:        now,
		UsageLimit:    1,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateGuardsUsageLimit(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	voucher, err := repo.Create(ctx, &models.Voucher{
		Code:          "SHRINK",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 1000,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(time.Hour),
		UsageLimit:    10,
		UsedCount:     4,
		Status:        enums.VoucherStatusActive,
	})
	require.NoError(t, err)

	limit := 3
	_, err = svc.Update(ctx, voucher.ID, UpdateInput{UsageLimit: &limit})
	requireCode(t, err, pkgerrors.CodeValidation)

	limit = 5
	updated, err := svc.Update(ctx, voucher.ID, UpdateInput{UsageLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.UsageLimit)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected error code %s, got %v", code, err)
	}
}
