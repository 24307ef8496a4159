package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

// Repository guards variant stock counters. Stock only moves through the
// conditional updates below so concurrent checkouts can never oversell.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Decrease(ctx context.Context, variantID uint, qty int) error
	Restock(ctx context.Context, variantID uint, qty int) error
	FindVariant(ctx context.Context, variantID uint) (*models.Variant, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Decrease atomically subtracts qty from the variant's stock. The WHERE clause
// rejects the update when remaining stock is insufficient, so the check and
// the write are a single statement.
func (r *repository) Decrease(ctx context.Context, variantID uint, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decreasing stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindVariant(ctx, variantID); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("variant %d has insufficient stock", variantID))
	}
	return nil
}

// Restock returns qty units to the variant, used when an order is canceled or
// a payment fails after stock was taken.
func (r *repository) Restock(ctx context.Context, variantID uint, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("restocking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %d not found", variantID))
	}
	return nil
}

func (r *repository) FindVariant(ctx context.Context, variantID uint) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %d not found", variantID))
		}
		return nil, err
	}
	return &variant, nil
}
