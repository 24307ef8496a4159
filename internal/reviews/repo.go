package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

// Repository persists order reviews.
type Repository interface {
	Create(ctx context.Context, review *models.OrderReview) error
	Exists(ctx context.Context, orderID string, variantID uint, userID uuid.UUID) (bool, error)
	FindOrderLine(ctx context.Context, orderID string, variantID uint, userID uuid.UUID) (*models.Order, error)
	ListByProduct(ctx context.Context, productID uint, params pagination.Params) ([]models.OrderReview, pagination.Meta, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) Create(ctx context.Context, review *models.OrderReview) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "this purchase is already reviewed")
		}
		return err
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, orderID string, variantID uint, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderReview{}).
		Where("order_id = ? AND variant_id = ? AND user_id = ?", orderID, variantID, userID).
		Count(&count).Error
	return count > 0, err
}

// FindOrderLine loads the caller's order only if it contains the variant.
func (r *repository) FindOrderLine(ctx context.Context, orderID string, variantID uint, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Joins("JOIN order_products ON order_products.order_id = orders.id AND order_products.variant_id = ?", variantID).
		Where("orders.id = ? AND orders.user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no purchase of variant %d found on order %q", variantID, orderID))
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByProduct(ctx context.Context, productID uint, params pagination.Params) ([]models.OrderReview, pagination.Meta, error) {
	params = pagination.Normalize(params)

	base := r.db.WithContext(ctx).
		Model(&models.OrderReview{}).
		Joins("JOIN variants ON variants.id = order_reviews.variant_id").
		Where("variants.product_id = ?", productID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var reviews []models.OrderReview
	err := base.
		Order("order_reviews.created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return reviews, pagination.NewMeta(params, total), nil
}
