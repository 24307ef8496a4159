package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
)

// Service manages the per-user wishlist.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	Add(ctx context.Context, userID uuid.UUID, variantID uint) (*models.Wishlist, error)
	Remove(ctx context.Context, userID uuid.UUID, variantID uint) (*models.Wishlist, error)
}

type service struct {
	repo      Repository
	inventory inventory.Repository
}

// NewService builds the wishlist service.
func NewService(repo Repository, inventoryRepo inventory.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, inventory: inventoryRepo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	return s.repo.FindOrCreate(ctx, userID)
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, variantID uint) (*models.Wishlist, error) {
	if _, err := s.inventory.FindVariant(ctx, variantID); err != nil {
		return nil, err
	}
	list, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddItem(ctx, list.ID, variantID); err != nil {
		return nil, err
	}
	return s.repo.FindOrCreate(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID uuid.UUID, variantID uint) (*models.Wishlist, error) {
	list, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, list.ID, variantID); err != nil {
		return nil, err
	}
	return s.repo.FindOrCreate(ctx, userID)
}
