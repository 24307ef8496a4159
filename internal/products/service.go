package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

// Service exposes product CRUD and variant management. Stock never changes
// through product updates; it moves through the inventory ledger only.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uint, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, pagination.Meta, error)
	SetImage(ctx context.Context, id uint, publicID, url string) (*models.Product, error)
	ClearImage(ctx context.Context, id uint) (*models.Product, error)
	AddVariant(ctx context.Context, productID uint, input VariantInput) (*models.Variant, error)
	RemoveVariant(ctx context.Context, variantID uint) error
	Restock(ctx context.Context, variantID uint, quantity int) (*models.Variant, error)
}

type service struct {
	repo      Repository
	inventory inventory.Repository
}

// NewService builds the products service.
func NewService(repo Repository, inventoryRepo inventory.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, inventory: inventoryRepo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product := &models.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		SportID:     input.SportID,
		TeamID:      input.TeamID,
		SupplierID:  input.SupplierID,
	}
	for _, v := range input.Variants {
		variant, err := buildVariant(v)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, *variant)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uint, input UpdateInput) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.SportID != nil {
		product.SportID = input.SportID
	}
	if input.TeamID != nil {
		product.TeamID = input.TeamID
	}
	if input.SupplierID != nil {
		product.SupplierID = input.SupplierID
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, pagination.Meta, error) {
	return s.repo.List(ctx, params, filters)
}

// SetImage records the hosted image for a product after a successful upload.
func (s *service) SetImage(ctx context.Context, id uint, publicID, url string) (*models.Product, error) {
	if publicID == "" || url == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image public id and url are required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.ImagePublicID = &publicID
	product.ImageURL = &url
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ClearImage detaches the hosted image reference from a product.
func (s *service) ClearImage(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.ImagePublicID = nil
	product.ImageURL = nil
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) AddVariant(ctx context.Context, productID uint, input VariantInput) (*models.Variant, error) {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	variant, err := buildVariant(input)
	if err != nil {
		return nil, err
	}
	variant.ProductID = productID
	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *service) RemoveVariant(ctx context.Context, variantID uint) error {
	return s.repo.DeleteVariant(ctx, variantID)
}

// Restock adds stock through the inventory ledger.
func (s *service) Restock(ctx context.Context, variantID uint, quantity int) (*models.Variant, error) {
	if err := s.inventory.Restock(ctx, variantID, quantity); err != nil {
		return nil, err
	}
	return s.inventory.FindVariant(ctx, variantID)
}

func buildVariant(input VariantInput) (*models.Variant, error) {
	size := strings.TrimSpace(input.Size)
	color := strings.TrimSpace(input.Color)
	if size == "" || color == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant size and color are required")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock cannot be negative")
	}
	return &models.Variant{Size: size, Color: color, Stock: input.Stock}, nil
}
