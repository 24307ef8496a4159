package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/internal/gateway/momo"
	"github.com/danghoang/sportygear-backend/internal/gateway/vnpay"
	"github.com/danghoang/sportygear-backend/internal/inventory"
	"github.com/danghoang/sportygear-backend/internal/orders"
	"github.com/danghoang/sportygear-backend/internal/vouchers"
	"github.com/danghoang/sportygear-backend/pkg/config"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/mailer"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type userRepoStub struct {
	db *gorm.DB
}

func (u userRepoStub) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type mailStub struct{}

func (mailStub) SendReceipt(ctx context.Context, receipt mailer.Receipt) error { return nil }

type guardStub struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newGuardStub() *guardStub {
	return &guardStub{keys: map[string]struct{}{}}
}

func (g *guardStub) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = struct{}{}
	return true, nil
}

func (g *guardStub) Del(ctx context.Context, keys ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, key := range keys {
		delete(g.keys, key)
	}
	return nil
}

func (g *guardStub) IPNKey(provider, orderID, resultCode string) string {
	return "sg:ipn:" + provider + ":" + orderID + ":" + resultCode
}

func (g *guardStub) has(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.keys[key]
	return ok
}

type momoStub struct {
	mu    sync.Mutex
	calls int
	resp  *momo.CreateResponse
	err   error
}

func (m *momoStub) CreatePayment(ctx context.Context, req momo.CreateRequest) (*momo.CreateResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &momo.CreateResponse{
		OrderID:   req.OrderID,
		RequestID: req.RequestID,
		Amount:    req.Amount,
		PayURL:    "https://test-payment.momo.vn/pay/" + req.OrderID,
		Deeplink:  "momo://pay/" + req.OrderID,
	}, nil
}

type fixture struct {
	db      *gorm.DB
	svc     Service
	guard   *guardStub
	momo    *momoStub
	user    *models.User
	variant *models.Variant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Variant{}, &models.Voucher{},
		&models.Order{}, &models.OrderProduct{}, &models.Payment{}, &models.PendingOrder{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := &models.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Linh", Role: enums.UserRoleCustomer}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	product := &models.Product{Name: "Home Jersey", Price: 50000}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := &models.Variant{ProductID: product.ID, Size: "M", Color: "Red", Stock: 10}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	voucherSvc, err := vouchers.NewService(vouchers.NewRepository(db))
	if err != nil {
		t.Fatalf("voucher service: %v", err)
	}
	orderSvc, err := orders.NewService(
		gormTxRunner{db: db},
		orders.NewRepository(db),
		inventory.NewRepository(db),
		voucherSvc,
		userRepoStub{db: db},
		mailStub{},
		nil,
	)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}

	guard := newGuardStub()
	momoGw := &momoStub{}
	vnpayClient := vnpay.NewClient(config.VNPayConfig{
		TmnCode:    "SGVN0001",
		HashSecret: "VNPAYSECRETKEY123456789ABCDEFGHI",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://example.com/api/payment/vnpay/return",
	})

	svc, err := NewService(
		gormTxRunner{db: db},
		NewRepository(db),
		orderSvc,
		momoGw,
		vnpayClient,
		guard,
		nil,
	)
	if err != nil {
		t.Fatalf("payments service: %v", err)
	}

	return &fixture{db: db, svc: svc, guard: guard, momo: momoGw, user: user, variant: variant}
}

func (f *fixture) createInput(orderID string) orders.CreateInput {
	return orders.CreateInput{
		OrderID:       orderID,
		UserID:        f.user.ID,
		OrderDate:     time.Now(),
		Items:         []orders.LineItemInput{{VariantID: f.variant.ID, Quantity: 2}},
		RecipientName: "Linh",
		Phone:         "0900000000",
		Address:       "1 Nguyen Hue, HCMC",
	}
}

func (f *fixture) paidNotification(orderID string) Notification {
	return Notification{
		Provider:      "momo",
		OrderID:       orderID,
		Success:       true,
		ResultCode:    "0",
		TransactionID: "4088878653",
		RawPayload:    `{"resultCode":0}`,
	}
}

func TestInitiateMoMoStagesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	init, err := f.svc.InitiateMoMo(ctx, f.createInput("ORD1"))
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if init.Amount != 100000 {
		t.Fatalf("amount = %d, want 100000", init.Amount)
	}
	if init.PayURL == "" {
		t.Fatal("expected a pay url")
	}

	var pending models.PendingOrder
	if err := f.db.First(&pending, "order_id = ?", "ORD1").Error; err != nil {
		t.Fatalf("pending order not staged: %v", err)
	}

	// no durable order yet; it is created when the provider confirms
	var orderCount int64
	f.db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("order count = %d, want 0", orderCount)
	}

	// stock untouched until payment
	var variant models.Variant
	f.db.First(&variant, f.variant.ID)
	if variant.Stock != 10 {
		t.Fatalf("stock = %d, want 10", variant.Stock)
	}
}

func TestInitiateMoMoGatewayFailureDropsStagedOrder(t *testing.T) {
	f := newFixture(t)
	f.momo.err = pkgerrors.New(pkgerrors.CodeDependency, "momo gateway unreachable")
	ctx := context.Background()

	_, err := f.svc.InitiateMoMo(ctx, f.createInput("ORD1"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("err = %v, want dependency error", err)
	}

	var count int64
	f.db.Model(&models.PendingOrder{}).Count(&count)
	if count != 0 {
		t.Fatalf("pending order count = %d, want 0", count)
	}
}

func TestInitiateVNPayReturnsSignedURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	init, err := f.svc.InitiateVNPay(ctx, f.createInput("ORD1"), "127.0.0.1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if init.Amount != 100000 {
		t.Fatalf("amount = %d, want 100000", init.Amount)
	}
	if init.PayURL == "" {
		t.Fatal("expected a pay url")
	}

	var pending models.PendingOrder
	if err := f.db.First(&pending, "order_id = ?", "ORD1").Error; err != nil {
		t.Fatalf("pending order not staged: %v", err)
	}
}

func TestApplyNotificationMaterializesPaidOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.InitiateMoMo(ctx, f.createInput("ORD1")); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := f.svc.ApplyNotification(ctx, f.paidNotification("ORD1")); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var order models.Order
	if err := f.db.First(&order, "id = ?", "ORD1").Error; err != nil {
		t.Fatalf("order not materialized: %v", err)
	}
	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", order.Status)
	}

	var payment models.Payment
	if err := f.db.First(&payment, "order_id = ?", "ORD1").Error; err != nil {
		t.Fatalf("payment: %v", err)
	}
	if payment.Status != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %q, want paid", payment.Status)
	}
	if payment.TransactionID == nil || *payment.TransactionID != "4088878653" {
		t.Fatalf("transaction id = %v, want 4088878653", payment.TransactionID)
	}
	if payment.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}

	var variant models.Variant
	f.db.First(&variant, f.variant.ID)
	if variant.Stock != 8 {
		t.Fatalf("stock = %d, want 8", variant.Stock)
	}

	// staged payload consumed
	var pendingCount int64
	f.db.Model(&models.PendingOrder{}).Count(&pendingCount)
	if pendingCount != 0 {
		t.Fatalf("pending order count = %d, want 0", pendingCount)
	}
}

func TestApplyNotificationDuplicateAppliedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.InitiateMoMo(ctx, f.createInput("ORD1")); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	notification := f.paidNotification("ORD1")
	if err := f.svc.ApplyNotification(ctx, notification); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := f.svc.ApplyNotification(ctx, notification); err != nil {
		t.Fatalf("duplicate apply: %v", err)
	}

	// simulate the guard key expiring; the payment row is the durable guard
	f.guard.Del(ctx, f.guard.IPNKey("momo", "ORD1", "0"))
	if err := f.svc.ApplyNotification(ctx, notification); err != nil {
		t.Fatalf("replayed apply: %v", err)
	}

	var orderCount int64
	f.db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 1 {
		t.Fatalf("order count = %d, want 1", orderCount)
	}

	var variant models.Variant
	f.db.First(&variant, f.variant.ID)
	if variant.Stock != 8 {
		t.Fatalf("stock = %d, want 8: duplicate notification decremented twice", variant.Stock)
	}
}

func TestApplyNotificationFailureDropsStagedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.InitiateMoMo(ctx, f.createInput("ORD1")); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	failed := f.paidNotification("ORD1")
	failed.Success = false
	failed.ResultCode = "1006"
	if err := f.svc.ApplyNotification(ctx, failed); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var orderCount int64
	f.db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("order count = %d, want 0", orderCount)
	}
	var pendingCount int64
	f.db.Model(&models.PendingOrder{}).Count(&pendingCount)
	if pendingCount != 0 {
		t.Fatalf("pending order count = %d, want 0", pendingCount)
	}
}

func TestApplyNotificationExpiredStagedOrderRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.InitiateMoMo(ctx, f.createInput("ORD1")); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	err := f.db.Model(&models.PendingOrder{}).
		Where("order_id = ?", "ORD1").
		Update("expires_at", time.Now().Add(-2*time.Hour)).Error
	if err != nil {
		t.Fatalf("backdate pending order: %v", err)
	}

	err = f.svc.ApplyNotification(ctx, f.paidNotification("ORD1"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}

	// nothing materialized, stock untouched, staged payload gone
	var orderCount int64
	f.db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("order count = %d, want 0", orderCount)
	}
	var variant models.Variant
	f.db.First(&variant, f.variant.ID)
	if variant.Stock != 10 {
		t.Fatalf("stock = %d, want 10", variant.Stock)
	}
	var pendingCount int64
	f.db.Model(&models.PendingOrder{}).Count(&pendingCount)
	if pendingCount != 0 {
		t.Fatalf("pending order count = %d, want 0", pendingCount)
	}
}

func TestInitiatePurgesExpiredStagedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.InitiateMoMo(ctx, f.createInput("OLD1")); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	err := f.db.Model(&models.PendingOrder{}).
		Where("order_id = ?", "OLD1").
		Update("expires_at", time.Now().Add(-time.Hour)).Error
	if err != nil {
		t.Fatalf("backdate pending order: %v", err)
	}

	if _, err := f.svc.InitiateMoMo(ctx, f.createInput("NEW1")); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	var count int64
	f.db.Model(&models.PendingOrder{}).Where("order_id = ?", "OLD1").Count(&count)
	if count != 0 {
		t.Fatalf("expired staged order still present")
	}
	f.db.Model(&models.PendingOrder{}).Where("order_id = ?", "NEW1").Count(&count)
	if count != 1 {
		t.Fatalf("fresh staged order missing")
	}
}

func TestApplyNotificationFailureAfterPaidIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.InitiateMoMo(ctx, f.createInput("ORD1")); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := f.svc.ApplyNotification(ctx, f.paidNotification("ORD1")); err != nil {
		t.Fatalf("apply: %v", err)
	}

	late := f.paidNotification("ORD1")
	late.Success = false
	late.ResultCode = "1006"
	if err := f.svc.ApplyNotification(ctx, late); err != nil {
		t.Fatalf("late apply: %v", err)
	}

	var payment models.Payment
	if err := f.db.First(&payment, "order_id = ?", "ORD1").Error; err != nil {
		t.Fatalf("payment: %v", err)
	}
	if payment.Status != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %q, want paid", payment.Status)
	}
}

func TestApplyNotificationErrorReleasesGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// nothing staged and no payment row, so applying fails
	notification := f.paidNotification("GHOST")
	if err := f.svc.ApplyNotification(ctx, notification); err == nil {
		t.Fatal("expected error for unknown order")
	}

	// the guard key must be released so the provider retry can get through
	if f.guard.has(f.guard.IPNKey("momo", "GHOST", "0")) {
		t.Fatal("guard key still held after failed apply")
	}
}

func TestApplyNotificationValidation(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ApplyNotification(context.Background(), Notification{Provider: "momo"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestNotificationFromMoMo(t *testing.T) {
	ipn := momo.IPN{OrderID: "ORD1", ResultCode: 0, TransID: 4088878653}
	got := NotificationFromMoMo(ipn, `{"resultCode":0}`)
	if !got.Success || got.OrderID != "ORD1" || got.TransactionID != "4088878653" {
		t.Fatalf("unexpected notification: %+v", got)
	}

	ipn.ResultCode = 1006
	if NotificationFromMoMo(ipn, "").Success {
		t.Fatal("result code 1006 must not be success")
	}
}

func TestNotificationFromVNPay(t *testing.T) {
	params := map[string][]string{
		"vnp_TxnRef":        {"ORD1"},
		"vnp_ResponseCode":  {vnpay.ResponseCodeSuccess},
		"vnp_TransactionNo": {"14012345"},
	}
	got := NotificationFromVNPay(params)
	if !got.Success || got.OrderID != "ORD1" || got.TransactionID != "14012345" {
		t.Fatalf("unexpected notification: %+v", got)
	}

	params["vnp_ResponseCode"] = []string{"24"}
	if NotificationFromVNPay(params).Success {
		t.Fatal("response code 24 must not be success")
	}
}
