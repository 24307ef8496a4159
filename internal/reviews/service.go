package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

// CreateInput carries a new review.
type CreateInput struct {
	OrderID   string
	VariantID uint
	UserID    uuid.UUID
	Rating    int
	Comment   *string
}

// Service handles product reviews tied to purchases.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.OrderReview, error)
	HasReviewed(ctx context.Context, orderID string, variantID uint, userID uuid.UUID) (bool, error)
	ListByProduct(ctx context.Context, productID uint, params pagination.Params) ([]models.OrderReview, pagination.Meta, error)
}

type service struct {
	repo Repository
}

// NewService builds the reviews service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

// Create accepts one review per purchased (order, variant) pair. The
// pre-check gives a clean error; the unique index backs it up under races.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.OrderReview, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.OrderID == "" || input.VariantID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and variant id are required")
	}

	order, err := s.repo.FindOrderLine(ctx, input.OrderID, input.VariantID, input.UserID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCanceled || order.Status == enums.OrderStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot review a canceled or failed order")
	}

	reviewed, err := s.repo.Exists(ctx, input.OrderID, input.VariantID, input.UserID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this purchase is already reviewed")
	}

	review := &models.OrderReview{
		OrderID:   input.OrderID,
		VariantID: input.VariantID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *service) HasReviewed(ctx context.Context, orderID string, variantID uint, userID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, orderID, variantID, userID)
}

func (s *service) ListByProduct(ctx context.Context, productID uint, params pagination.Params) ([]models.OrderReview, pagination.Meta, error) {
	return s.repo.ListByProduct(ctx, productID, params)
}
