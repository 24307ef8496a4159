package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/internal/gateway/momo"
	"github.com/danghoang/sportygear-backend/internal/gateway/vnpay"
	"github.com/danghoang/sportygear-backend/internal/orders"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/logger"
)

const (
	pendingOrderTTL = 15 * time.Minute
	ipnGuardTTL     = 24 * time.Hour

	providerMoMo  = "momo"
	providerVNPay = "vnpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ipnGuard interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IPNKey(provider, orderID, resultCode string) string
}

type momoGateway interface {
	CreatePayment(ctx context.Context, req momo.CreateRequest) (*momo.CreateResponse, error)
}

type vnpayGateway interface {
	BuildPayURL(req vnpay.PayRequest) (string, error)
}

// Initiation is the client-facing result of starting a gateway payment.
type Initiation struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	PayURL    string `json:"pay_url"`
	Deeplink  string `json:"deeplink,omitempty"`
	QRCodeURL string `json:"qr_code_url,omitempty"`
}

// Notification is the provider-agnostic view of a payment callback.
type Notification struct {
	Provider      string
	OrderID       string
	Success       bool
	ResultCode    string
	TransactionID string
	RawPayload    string
}

// Service starts gateway payments and applies their callbacks exactly once.
type Service interface {
	InitiateMoMo(ctx context.Context, input orders.CreateInput) (*Initiation, error)
	InitiateVNPay(ctx context.Context, input orders.CreateInput, ipAddr string) (*Initiation, error)
	ApplyNotification(ctx context.Context, notification Notification) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
}

type service struct {
	tx     txRunner
	repo   Repository
	orders orders.Service
	momo   momoGateway
	vnpay  vnpayGateway
	guard  ipnGuard
	logg   *logger.Logger
}

// NewService builds the payments service.
func NewService(
	tx txRunner,
	repo Repository,
	ordersSvc orders.Service,
	momoClient momoGateway,
	vnpayClient vnpayGateway,
	guard ipnGuard,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if guard == nil {
		return nil, fmt.Errorf("ipn guard required")
	}
	return &service{
		tx:     tx,
		repo:   repo,
		orders: ordersSvc,
		momo:   momoClient,
		vnpay:  vnpayClient,
		guard:  guard,
		logg:   logg,
	}, nil
}

// InitiateMoMo prices the order, stages it for IPN-time materialization, and
// asks the wallet for a pay URL. Nothing durable exists yet besides the
// staged payload; the order itself is created when MoMo confirms payment.
func (s *service) InitiateMoMo(ctx context.Context, input orders.CreateInput) (*Initiation, error) {
	if s.momo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "momo gateway is not configured")
	}
	input.PaymentMethod = enums.PaymentMethodMoMo

	quote, err := s.orders.Quote(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.stage(ctx, input); err != nil {
		return nil, err
	}

	resp, err := s.momo.CreatePayment(ctx, momo.CreateRequest{
		OrderID:   input.OrderID,
		OrderInfo: fmt.Sprintf("SportyGear order %s", input.OrderID),
		Amount:    quote.Total,
		RequestID: input.OrderID,
	})
	if err != nil {
		_ = s.repo.DeletePendingOrder(ctx, input.OrderID)
		return nil, err
	}

	return &Initiation{
		OrderID:   input.OrderID,
		Amount:    quote.Total,
		PayURL:    resp.PayURL,
		Deeplink:  resp.Deeplink,
		QRCodeURL: resp.QRCodeURL,
	}, nil
}

// InitiateVNPay prices and stages the order, then returns the signed redirect
// URL. No network call is involved.
func (s *service) InitiateVNPay(ctx context.Context, input orders.CreateInput, ipAddr string) (*Initiation, error) {
	if s.vnpay == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vnpay gateway is not configured")
	}
	input.PaymentMethod = enums.PaymentMethodVNPay

	quote, err := s.orders.Quote(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.stage(ctx, input); err != nil {
		return nil, err
	}

	payURL, err := s.vnpay.BuildPayURL(vnpay.PayRequest{
		OrderID: input.OrderID,
		Amount:  quote.Total,
		IPAddr:  ipAddr,
	})
	if err != nil {
		_ = s.repo.DeletePendingOrder(ctx, input.OrderID)
		return nil, err
	}

	return &Initiation{
		OrderID: input.OrderID,
		Amount:  quote.Total,
		PayURL:  payURL,
	}, nil
}

func (s *service) stage(ctx context.Context, input orders.CreateInput) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encoding pending order: %w", err)
	}
	if _, err := s.repo.DeleteExpiredPendingOrders(ctx, time.Now()); err != nil && s.logg != nil {
		s.logg.Error(ctx, "purging expired pending orders", err)
	}
	return s.repo.StagePendingOrder(ctx, &models.PendingOrder{
		OrderID:   input.OrderID,
		Payload:   string(payload),
		ExpiresAt: time.Now().Add(pendingOrderTTL),
	})
}

// ApplyNotification applies a verified provider callback exactly once. The
// redis SetNX guard absorbs duplicate deliveries cheaply; the payment row's
// status is the durable guard when redis forgets.
func (s *service) ApplyNotification(ctx context.Context, notification Notification) error {
	if notification.OrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	key := s.guard.IPNKey(notification.Provider, notification.OrderID, notification.ResultCode)
	first, err := s.guard.SetNX(ctx, key, "1", ipnGuardTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ipn guard unavailable")
	}
	if !first {
		return nil
	}

	if err := s.apply(ctx, notification); err != nil {
		// allow the provider's retry to get through
		_ = s.guard.Del(ctx, key)
		return err
	}
	return nil
}

func (s *service) apply(ctx context.Context, notification Notification) error {
	payment, err := s.repo.FindByOrderID(ctx, notification.OrderID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return s.applyToStagedOrder(ctx, notification)
		}
		return err
	}

	// durable idempotency: a settled payment is never rewritten
	if payment.Status != enums.PaymentStatusPending {
		return nil
	}
	return s.settle(ctx, payment, notification)
}

// applyToStagedOrder materializes the order from its staged payload on the
// first successful callback, then settles the payment row created with it.
func (s *service) applyToStagedOrder(ctx context.Context, notification Notification) error {
	pending, err := s.repo.FindPendingOrder(ctx, notification.OrderID)
	if err != nil {
		return err
	}
	if time.Now().After(pending.ExpiresAt) {
		// too late to honor the callback; the buyer sees a failed payment
		if err := s.repo.DeletePendingOrder(ctx, notification.OrderID); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("pending order %q expired", notification.OrderID))
	}

	if !notification.Success {
		// buyer never paid; drop the staged payload and keep nothing
		return s.repo.DeletePendingOrder(ctx, notification.OrderID)
	}

	var input orders.CreateInput
	if err := json.Unmarshal([]byte(pending.Payload), &input); err != nil {
		return fmt.Errorf("decoding pending order %q: %w", notification.OrderID, err)
	}

	if _, err := s.orders.Create(ctx, input); err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, notification.OrderID), "materializing paid order", err)
		}
		return err
	}
	if err := s.repo.DeletePendingOrder(ctx, notification.OrderID); err != nil {
		return err
	}

	payment, err := s.repo.FindByOrderID(ctx, notification.OrderID)
	if err != nil {
		return err
	}
	return s.settle(ctx, payment, notification)
}

func (s *service) settle(ctx context.Context, payment *models.Payment, notification Notification) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if notification.Success {
			now := time.Now()
			payment.Status = enums.PaymentStatusPaid
			payment.PaidAt = &now
		} else {
			payment.Status = enums.PaymentStatusFailed
		}
		if notification.TransactionID != "" {
			payment.TransactionID = &notification.TransactionID
		}
		if notification.RawPayload != "" {
			payment.RawPayload = &notification.RawPayload
		}
		if err := repo.Update(ctx, payment); err != nil {
			return err
		}

		status := enums.OrderStatusPaid
		if !notification.Success {
			status = enums.OrderStatusFailed
		}
		return tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ? AND status = ?", payment.OrderID, enums.OrderStatusPending).
			Update("status", status).Error
	})
}

func (s *service) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// NotificationFromMoMo converts a verified MoMo IPN into the provider-agnostic
// form.
func NotificationFromMoMo(ipn momo.IPN, raw string) Notification {
	return Notification{
		Provider:      providerMoMo,
		OrderID:       ipn.OrderID,
		Success:       ipn.ResultCode == 0,
		ResultCode:    strconv.Itoa(ipn.ResultCode),
		TransactionID: strconv.FormatInt(ipn.TransID, 10),
		RawPayload:    raw,
	}
}

// NotificationFromVNPay converts verified VNPay return params.
func NotificationFromVNPay(params url.Values) Notification {
	code := params.Get("vnp_ResponseCode")
	return Notification{
		Provider:      providerVNPay,
		OrderID:       params.Get("vnp_TxnRef"),
		Success:       code == vnpay.ResponseCodeSuccess,
		ResultCode:    code,
		TransactionID: params.Get("vnp_TransactionNo"),
		RawPayload:    params.Encode(),
	}
}
