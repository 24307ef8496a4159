package wishlist

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

// Repository persists wishlists. One list per user; saved variants are
// unique per (wishlist, variant) and re-saving is a no-op.
type Repository interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	AddItem(ctx context.Context, wishlistID, variantID uint) error
	RemoveItem(ctx context.Context, wishlistID, variantID uint) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wishlist repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var list models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items.Variant.Product").
		Where("user_id = ?", userID).
		First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = models.Wishlist{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) AddItem(ctx context.Context, wishlistID, variantID uint) error {
	item := models.WishlistItem{WishlistID: wishlistID, VariantID: variantID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wishlist_id"}, {Name: "variant_id"}},
		DoNothing: true,
	}).Create(&item).Error
}

func (r *repository) RemoveItem(ctx context.Context, wishlistID, variantID uint) error {
	res := r.db.WithContext(ctx).
		Delete(&models.WishlistItem{}, "wishlist_id = ? AND variant_id = ?", wishlistID, variantID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %d not in wishlist", variantID))
	}
	return nil
}
