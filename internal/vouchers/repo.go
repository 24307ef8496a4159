package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

// Repository defines persistence for discount vouchers. Redeem and Release
// move the usage counter with conditional updates so the usage budget holds
// under concurrent checkouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, voucher *models.Voucher) (*models.Voucher, error)
	Update(ctx context.Context, voucher *models.Voucher) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Voucher, error)
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	List(ctx context.Context, params pagination.Params) ([]models.Voucher, int64, error)
	Redeem(ctx context.Context, id uint) error
	Release(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a voucher repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, voucher *models.Voucher) (*models.Voucher, error) {
	voucher.Code = strings.ToUpper(strings.TrimSpace(voucher.Code))
	if err := r.db.WithContext(ctx).Create(voucher).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("voucher code %q already exists", voucher.Code))
		}
		return nil, err
	}
	return voucher, nil
}

func (r *repository) Update(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Save(voucher).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Voucher{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("voucher %d not found", id))
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).First(&voucher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("voucher %d not found", id))
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("voucher %q not found", code))
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Voucher, int64, error) {
	params = pagination.Normalize(params)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Voucher{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vouchers []models.Voucher
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&vouchers).Error
	if err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

// Redeem consumes one use of the voucher. The WHERE clause keeps used_count
// under the limit even when several checkouts race for the last slot.
func (r *repository) Redeem(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND used_count < usage_limit", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("redeeming voucher: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeVoucherLimit, fmt.Sprintf("voucher %d usage limit reached", id))
	}
	return nil
}

// Release gives back one use after a failed or canceled redemption.
func (r *repository) Release(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND used_count > 0", id).
		UpdateColumn("used_count", gorm.Expr("used_count - 1"))
	if res.Error != nil {
		return fmt.Errorf("releasing voucher: %w", res.Error)
	}
	return nil
}
