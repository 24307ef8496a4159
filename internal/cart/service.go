package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/internal/vouchers"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

// QuoteLine is one priced cart row.
type QuoteLine struct {
	VariantID uint   `json:"variant_id"`
	Product   string `json:"product"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

// Quote prices the cart with an optional voucher applied. Nothing is
// persisted or reserved; checkout re-validates everything.
type Quote struct {
	Lines    []QuoteLine `json:"lines"`
	Subtotal int64       `json:"subtotal"`
	Discount int64       `json:"discount"`
	Total    int64       `json:"total"`
	Voucher  *string     `json:"voucher,omitempty"`
}

// Service manages the per-user cart.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, variantID uint, quantity int) (*models.Cart, error)
	SetItemQuantity(ctx context.Context, userID uuid.UUID, variantID uint, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, variantID uint) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Quote(ctx context.Context, userID uuid.UUID, voucherCode string) (*Quote, error)
}

type service struct {
	repo      Repository
	inventory inventory.Repository
	vouchers  vouchers.Service
}

// NewService builds the cart service.
func NewService(repo Repository, inventoryRepo inventory.Repository, voucherSvc vouchers.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if voucherSvc == nil {
		return nil, fmt.Errorf("voucher service required")
	}
	return &service{repo: repo, inventory: inventoryRepo, vouchers: voucherSvc}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.repo.FindOrCreate(ctx, userID)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, variantID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	variant, err := s.inventory.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.Stock < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("variant %d has %d in stock", variantID, variant.Stock))
	}

	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertItem(ctx, cart.ID, variantID, quantity); err != nil {
		return nil, err
	}
	return s.repo.FindOrCreate(ctx, userID)
}

// SetItemQuantity overwrites the row's quantity; zero removes the row.
func (s *service) SetItemQuantity(ctx context.Context, userID uuid.UUID, variantID uint, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		if err := s.repo.RemoveItem(ctx, cart.ID, variantID); err != nil {
			return nil, err
		}
		return s.repo.FindOrCreate(ctx, userID)
	}
	if err := s.repo.SetItemQuantity(ctx, cart.ID, variantID, quantity); err != nil {
		return nil, err
	}
	return s.repo.FindOrCreate(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, variantID uint) (*models.Cart, error) {
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, variantID); err != nil {
		return nil, err
	}
	return s.repo.FindOrCreate(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}

func (s *service) Quote(ctx context.Context, userID uuid.UUID, voucherCode string) (*Quote, error) {
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	quote := &Quote{}
	for _, item := range cart.Items {
		if item.Variant == nil || item.Variant.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %d no longer exists", item.VariantID))
		}
		line := QuoteLine{
			VariantID: item.VariantID,
			Product:   item.Variant.Product.Name,
			Size:      item.Variant.Size,
			Color:     item.Variant.Color,
			Quantity:  item.Quantity,
			UnitPrice: item.Variant.Product.Price,
			Subtotal:  item.Variant.Product.Price * int64(item.Quantity),
		}
		quote.Lines = append(quote.Lines, line)
		quote.Subtotal += line.Subtotal
	}

	if voucherCode != "" {
		voucher, err := s.vouchers.Validate(ctx, voucherCode, quote.Subtotal, time.Now())
		if err != nil {
			return nil, err
		}
		quote.Discount = s.vouchers.Discount(voucher, quote.Subtotal)
		quote.Voucher = &voucher.Code
	}

	quote.Total = quote.Subtotal - quote.Discount
	return quote, nil
}
