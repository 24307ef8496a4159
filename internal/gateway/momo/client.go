package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danghoang/sportygear-backend/pkg/config"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

const (
	requestTypeCaptureWallet = "captureWallet"
	langEN                   = "en"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the MoMo wallet gateway.
type Client struct {
	cfg  config.MoMoConfig
	http httpDoer
}

// NewClient builds a MoMo gateway client.
func NewClient(cfg config.MoMoConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateRequest describes one payment creation call.
type CreateRequest struct {
	OrderID   string
	OrderInfo string
	Amount    int64
	RequestID string
	ExtraData string
}

type createPayload struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

// CreateResponse is the decoded provider reply.
type CreateResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	PayURL      string `json:"payUrl"`
	Deeplink    string `json:"deeplink"`
	QRCodeURL   string `json:"qrCodeUrl"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
}

// IPN is the server-to-server payment notification body.
type IPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// CreatePayment signs and posts a captureWallet request and returns the
// provider response. A non-zero provider result code is a dependency error.
func (c *Client) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if req.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if req.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if req.RequestID == "" {
		req.RequestID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	if req.OrderInfo == "" {
		req.OrderInfo = "pay with MoMo"
	}

	payload := createPayload{
		PartnerCode: c.cfg.PartnerCode,
		AccessKey:   c.cfg.AccessKey,
		RequestID:   req.RequestID,
		Amount:      strconv.FormatInt(req.Amount, 10),
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: c.cfg.RedirectURL,
		IPNURL:      c.cfg.IPNURL,
		ExtraData:   req.ExtraData,
		RequestType: requestTypeCaptureWallet,
		Lang:        langEN,
	}
	payload.Signature = c.signCreate(payload)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding momo request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building momo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "momo gateway unreachable")
	}
	defer resp.Body.Close()

	var decoded CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding momo response")
	}
	if decoded.ResultCode != 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("momo rejected payment: %s", decoded.Message))
	}
	return &decoded, nil
}

// signCreate builds the HMAC-SHA256 signature over the documented raw field
// sequence. The raw string is plain key=value pairs joined by &, in this
// exact order, with no URL encoding.
func (c *Client) signCreate(p createPayload) string {
	raw := strings.Join([]string{
		"accessKey=" + p.AccessKey,
		"amount=" + p.Amount,
		"extraData=" + p.ExtraData,
		"ipnUrl=" + p.IPNURL,
		"orderId=" + p.OrderID,
		"orderInfo=" + p.OrderInfo,
		"partnerCode=" + p.PartnerCode,
		"redirectUrl=" + p.RedirectURL,
		"requestId=" + p.RequestID,
		"requestType=" + p.RequestType,
	}, "&")
	return c.hmacHex(raw)
}

// VerifyIPN recomputes the notification signature and compares it in constant
// time. The raw string covers the documented IPN fields in alphabetical order.
func (c *Client) VerifyIPN(ipn IPN) bool {
	raw := strings.Join([]string{
		"accessKey=" + c.cfg.AccessKey,
		"amount=" + strconv.FormatInt(ipn.Amount, 10),
		"extraData=" + ipn.ExtraData,
		"message=" + ipn.Message,
		"orderId=" + ipn.OrderID,
		"orderInfo=" + ipn.OrderInfo,
		"orderType=" + ipn.OrderType,
		"partnerCode=" + ipn.PartnerCode,
		"payType=" + ipn.PayType,
		"requestId=" + ipn.RequestID,
		"responseTime=" + strconv.FormatInt(ipn.ResponseTime, 10),
		"resultCode=" + strconv.Itoa(ipn.ResultCode),
		"transId=" + strconv.FormatInt(ipn.TransID, 10),
	}, "&")
	expected := c.hmacHex(raw)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(ipn.Signature)) == 1
}

func (c *Client) hmacHex(raw string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
