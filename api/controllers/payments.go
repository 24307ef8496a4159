package controllers

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danghoang/sportygear-backend/api/responses"
	"github.com/danghoang/sportygear-backend/api/validators"
	"github.com/danghoang/sportygear-backend/internal/gateway/momo"
	"github.com/danghoang/sportygear-backend/internal/orders"
	"github.com/danghoang/sportygear-backend/internal/payments"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/logger"
)

type momoVerifier interface {
	VerifyIPN(ipn momo.IPN) bool
}

type vnpayVerifier interface {
	Verify(params url.Values) bool
}

type gatewayOrderRequest struct {
	Items         []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	VoucherCode   string             `json:"voucher_code,omitempty"`
	RecipientName string             `json:"recipient_name" validate:"required"`
	Phone         string             `json:"phone" validate:"required"`
	Address       string             `json:"address" validate:"required"`
	Notes         *string            `json:"notes,omitempty"`
}

func (r gatewayOrderRequest) toInput(userID uuid.UUID, now time.Time) orders.CreateInput {
	items := make([]orders.LineItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, orders.LineItemInput{VariantID: item.VariantID, Quantity: item.Quantity})
	}
	return orders.CreateInput{
		OrderID:       newOrderID(now),
		UserID:        userID,
		OrderDate:     now,
		Items:         items,
		VoucherCode:   r.VoucherCode,
		RecipientName: r.RecipientName,
		Phone:         r.Phone,
		Address:       r.Address,
		Notes:         r.Notes,
	}
}

// InitiateMoMoPayment stages the order and returns the wallet pay URL.
func InitiateMoMoPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req gatewayOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		initiation, err := svc.InitiateMoMo(r.Context(), req.toInput(userID, time.Now()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, initiation)
	}
}

// InitiateVNPayPayment stages the order and returns the signed redirect URL.
func InitiateVNPayPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req gatewayOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		initiation, err := svc.InitiateVNPay(r.Context(), req.toInput(userID, time.Now()), remoteIP(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, initiation)
	}
}

// MoMoIPN receives the wallet's server-to-server notification. The signature
// is verified here before anything touches the database; MoMo expects a 204
// once the notification is accepted.
func MoMoIPN(svc payments.Service, verifier momoVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || verifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read ipn body"))
			return
		}
		var ipn momo.IPN
		if err := json.Unmarshal(raw, &ipn); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ipn payload"))
			return
		}
		if !verifier.VerifyIPN(ipn) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "ipn signature mismatch"))
			return
		}

		if err := svc.ApplyNotification(r.Context(), payments.NotificationFromMoMo(ipn, string(raw))); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// VNPayReturn handles the browser redirect back from VNPay. The signed query
// doubles as the settlement notification.
func VNPayReturn(svc payments.Service, verifier vnpayVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || verifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		params := r.URL.Query()
		if !verifier.Verify(params) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "return signature mismatch"))
			return
		}

		notification := payments.NotificationFromVNPay(params)
		if err := svc.ApplyNotification(r.Context(), notification); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order_id":    notification.OrderID,
			"success":     notification.Success,
			"result_code": notification.ResultCode,
		})
	}
}

// GetPayment serves the payment record for an order. Customers only see their
// own payments.
func GetPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id required"))
			return
		}
		payment, err := svc.GetByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !isAdmin(r) {
			caller, err := callerID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if payment.UserID != caller {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found"))
				return
			}
		}
		responses.WriteSuccess(w, payment)
	}
}

func remoteIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		if ip := strings.TrimSpace(strings.Split(header, ",")[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
