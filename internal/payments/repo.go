package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

// Repository persists payment rows and staged pending orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	StagePendingOrder(ctx context.Context, pending *models.PendingOrder) error
	FindPendingOrder(ctx context.Context, orderID string) (*models.PendingOrder, error)
	DeletePendingOrder(ctx context.Context, orderID string) error
	DeleteExpiredPendingOrders(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("payment for order %q not found", orderID))
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) StagePendingOrder(ctx context.Context, pending *models.PendingOrder) error {
	return r.db.WithContext(ctx).Save(pending).Error
}

func (r *repository) FindPendingOrder(ctx context.Context, orderID string) (*models.PendingOrder, error) {
	var pending models.PendingOrder
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("pending order %q not found", orderID))
		}
		return nil, err
	}
	return &pending, nil
}

func (r *repository) DeletePendingOrder(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Delete(&models.PendingOrder{}, "order_id = ?", orderID).Error
}

func (r *repository) DeleteExpiredPendingOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.PendingOrder{}, "expires_at < ?", cutoff)
	return res.RowsAffected, res.Error
}
