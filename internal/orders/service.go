package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/internal/vouchers"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/logger"
	"github.com/danghoang/sportygear-backend/pkg/mailer"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type receiptSender interface {
	SendReceipt(ctx context.Context, receipt mailer.Receipt) error
}

// Quote is the priced summary of a prospective order.
type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// Service executes order creation and lifecycle transitions.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Quote(ctx context.Context, input CreateInput) (*Quote, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetForUser(ctx context.Context, id string, userID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, pagination.Meta, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, pagination.Meta, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, id string, userID uuid.UUID) (*models.Order, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	inventory inventory.Repository
	vouchers  vouchers.Service
	users     userLoader
	mail      receiptSender
	logg      *logger.Logger
}

// NewService builds the orders service.
func NewService(
	tx txRunner,
	repo Repository,
	inventoryRepo inventory.Repository,
	voucherSvc vouchers.Service,
	users userLoader,
	mail receiptSender,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if voucherSvc == nil {
		return nil, fmt.Errorf("voucher service required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		inventory: inventoryRepo,
		vouchers:  voucherSvc,
		users:     users,
		mail:      mail,
		logg:      logg,
	}, nil
}

// Create materializes the full order aggregate in one transaction: stock is
// taken per line through the inventory ledger, the voucher budget is consumed,
// and the header, line items, and payment row are inserted together. Any
// failure rolls back everything. The receipt email goes out after commit and
// never affects the result.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		invRepo := s.inventory.WithTx(tx)
		voucherSvc := s.vouchers.WithTx(tx)
		ordersRepo := s.repo.WithTx(tx)

		var subtotal int64
		lines := make([]models.OrderProduct, 0, len(input.Items))
		for _, item := range input.Items {
			variant, err := invRepo.FindVariant(ctx, item.VariantID)
			if err != nil {
				return err
			}
			if variant.Product == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("variant %d has no product", item.VariantID))
			}
			if err := invRepo.Decrease(ctx, item.VariantID, item.Quantity); err != nil {
				return err
			}
			price := variant.Product.Price
			subtotal += price * int64(item.Quantity)
			lines = append(lines, models.OrderProduct{
				VariantID:   item.VariantID,
				Quantity:    item.Quantity,
				PriceAtTime: price,
			})
		}

		var voucherID *uint
		var discount int64
		if input.VoucherCode != "" {
			voucher, err := voucherSvc.Validate(ctx, input.VoucherCode, subtotal, input.OrderDate)
			if err != nil {
				return err
			}
			if err := voucherSvc.Redeem(ctx, voucher.ID); err != nil {
				return err
			}
			discount = voucherSvc.Discount(voucher, subtotal)
			voucherID = &voucher.ID
		}

		total := subtotal - discount
		if total < 0 {
			total = 0
		}

		record := &models.Order{
			ID:            input.OrderID,
			UserID:        input.UserID,
			VoucherID:     voucherID,
			OrderDate:     input.OrderDate,
			Status:        enums.OrderStatusPending,
			Total:         total,
			RecipientName: input.RecipientName,
			Phone:         input.Phone,
			Address:       input.Address,
			Notes:         input.Notes,
			Products:      lines,
			Payment: &models.Payment{
				UserID:    input.UserID,
				VoucherID: voucherID,
				Method:    input.PaymentMethod,
				Status:    enums.PaymentStatusPending,
				Amount:    total,
			},
		}
		created, err := ordersRepo.Create(ctx, record)
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendReceiptAsync(ctx, order, user)
	return order, nil
}

// Quote prices the prospective order without persisting anything: variant
// prices are read, the voucher is validated but not redeemed, and stock stays
// untouched. Gateway flows use this before redirecting the buyer.
func (s *service) Quote(ctx context.Context, input CreateInput) (*Quote, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	var subtotal int64
	for _, item := range input.Items {
		variant, err := s.inventory.FindVariant(ctx, item.VariantID)
		if err != nil {
			return nil, err
		}
		if variant.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("variant %d has no product", item.VariantID))
		}
		if variant.Stock < item.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("variant %d has insufficient stock", item.VariantID))
		}
		subtotal += variant.Product.Price * int64(item.Quantity)
	}

	var discount int64
	if input.VoucherCode != "" {
		voucher, err := s.vouchers.Validate(ctx, input.VoucherCode, subtotal, input.OrderDate)
		if err != nil {
			return nil, err
		}
		discount = s.vouchers.Discount(voucher, subtotal)
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	return &Quote{Subtotal: subtotal, Discount: discount, Total: total}, nil
}

func validateCreateInput(input *CreateInput) error {
	input.OrderID = strings.TrimSpace(input.OrderID)
	if input.OrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	seen := make(map[uint]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, dup := seen[item.VariantID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant %d appears twice", item.VariantID))
		}
		seen[item.VariantID] = struct{}{}
	}
	if strings.TrimSpace(input.RecipientName) == "" || strings.TrimSpace(input.Phone) == "" || strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient name, phone, and address are required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if input.OrderDate.IsZero() {
		input.OrderDate = time.Now()
	}
	return nil
}

func (s *service) sendReceiptAsync(ctx context.Context, order *models.Order, user *models.User) {
	if s.mail == nil || order == nil || user == nil {
		return
	}

	receipt := buildReceipt(order, user)
	go func() {
		bg := context.WithoutCancel(ctx)
		if err := s.mail.SendReceipt(bg, receipt); err != nil && s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(bg, order.ID), "sending order receipt", err)
		}
	}()
}

func buildReceipt(order *models.Order, user *models.User) mailer.Receipt {
	lines := make([]mailer.ReceiptLine, 0, len(order.Products))
	var subtotal int64
	for _, line := range order.Products {
		name := fmt.Sprintf("variant %d", line.VariantID)
		size, color := "", ""
		if line.Variant != nil {
			size, color = line.Variant.Size, line.Variant.Color
			if line.Variant.Product != nil {
				name = line.Variant.Product.Name
			}
		}
		lineTotal := line.PriceAtTime * int64(line.Quantity)
		subtotal += lineTotal
		lines = append(lines, mailer.ReceiptLine{
			Name:     name,
			Size:     size,
			Color:    color,
			Quantity: line.Quantity,
			Subtotal: lineTotal,
		})
	}
	return mailer.Receipt{
		To:            user.Email,
		RecipientName: order.RecipientName,
		OrderID:       order.ID,
		OrderDate:     order.OrderDate,
		Lines:         lines,
		Discount:      subtotal - order.Total,
		Total:         order.Total,
	}
}

func (s *service) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// GetForUser loads an order and hides other users' orders behind NOT_FOUND.
func (s *service) GetForUser(ctx context.Context, id string, userID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %q not found", id))
	}
	return order, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, pagination.Meta, error) {
	orders, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return orders, pagination.NewMeta(params, total), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, pagination.Meta, error) {
	orders, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return orders, pagination.NewMeta(params, total), nil
}

// UpdateStatus applies an admin status change, rejecting invalid transitions.
func (s *service) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("order %q is already %s", id, order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

// Cancel restocks every line, releases the voucher budget, and marks the
// order canceled, all in one transaction. Only pending orders can be canceled.
func (s *service) Cancel(ctx context.Context, id string, userID uuid.UUID) (*models.Order, error) {
	var canceled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.repo.WithTx(tx)
		invRepo := s.inventory.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if userID != uuid.Nil && order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %q not found", id))
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("order %q cannot be canceled from %s", id, order.Status))
		}

		for _, line := range order.Products {
			if err := invRepo.Restock(ctx, line.VariantID, line.Quantity); err != nil {
				return err
			}
		}
		if order.VoucherID != nil {
			if err := s.vouchers.WithTx(tx).Release(ctx, *order.VoucherID); err != nil {
				return err
			}
		}

		if err := ordersRepo.UpdateStatus(ctx, id, enums.OrderStatusCanceled); err != nil {
			return err
		}
		order.Status = enums.OrderStatusCanceled
		canceled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return canceled, nil
}
