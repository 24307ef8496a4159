package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

// Repository persists carts. One cart per user; items are unique per
// (cart, variant) and the add path upserts on that key.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpsertItem(ctx context.Context, cartID, variantID uint, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, variantID uint, quantity int) error
	RemoveItem(ctx context.Context, cartID, variantID uint) error
	Clear(ctx context.Context, cartID uint) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items.Variant.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertItem adds quantity to an existing row or inserts a new one, in a
// single statement keyed on the (cart, variant) unique index.
func (r *repository) UpsertItem(ctx context.Context, cartID, variantID uint, quantity int) error {
	item := models.CartItem{CartID: cartID, VariantID: variantID, Quantity: quantity}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("quantity + ?", quantity)}),
	}).Create(&item).Error
}

func (r *repository) SetItemQuantity(ctx context.Context, cartID, variantID uint, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %d not in cart", variantID))
	}
	return nil
}

func (r *repository) RemoveItem(ctx context.Context, cartID, variantID uint) error {
	res := r.db.WithContext(ctx).
		Delete(&models.CartItem{}, "cart_id = ? AND variant_id = ?", cartID, variantID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %d not in cart", variantID))
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}
