package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/danghoang/sportygear-backend/pkg/config"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

const (
	version     = "2.1.0"
	commandPay  = "pay"
	currency    = "VND"
	orderType   = "other"
	localeVN    = "vn"
	dateLayout  = "20060102150405"
	hashParam   = "vnp_SecureHash"
	hashTypeKey = "vnp_SecureHashType"
)

// ResponseCodeSuccess is the provider code for a completed payment.
const ResponseCodeSuccess = "00"

// Client builds and verifies VNPay redirect URLs. VNPay has no create API
// call; the browser is sent straight to the signed pay URL.
type Client struct {
	cfg config.VNPayConfig
}

// NewClient builds a VNPay gateway client.
func NewClient(cfg config.VNPayConfig) *Client {
	return &Client{cfg: cfg}
}

// PayRequest describes one redirect payment.
type PayRequest struct {
	OrderID    string
	Amount     int64
	OrderInfo  string
	IPAddr     string
	CreateDate time.Time
	Locale     string
}

// BuildPayURL assembles the signed redirect URL. The signature is HMAC-SHA512
// over the URL-encoded query with keys in lexicographic order, which is
// exactly what url.Values.Encode produces.
func (c *Client) BuildPayURL(req PayRequest) (string, error) {
	if req.OrderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if req.Amount <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if req.CreateDate.IsZero() {
		req.CreateDate = time.Now()
	}
	if req.Locale == "" {
		req.Locale = localeVN
	}
	if req.OrderInfo == "" {
		req.OrderInfo = fmt.Sprintf("Thanh toan don hang %s", req.OrderID)
	}

	params := url.Values{}
	params.Set("vnp_Version", version)
	params.Set("vnp_Command", commandPay)
	params.Set("vnp_TmnCode", c.cfg.TmnCode)
	// provider expects the amount in minor units, total * 100
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", currency)
	params.Set("vnp_TxnRef", req.OrderID)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", orderType)
	params.Set("vnp_Locale", req.Locale)
	params.Set("vnp_ReturnUrl", c.cfg.ReturnURL)
	params.Set("vnp_IpAddr", req.IPAddr)
	params.Set("vnp_CreateDate", req.CreateDate.Format(dateLayout))

	encoded := params.Encode()
	signature := c.hmacHex(encoded)
	return fmt.Sprintf("%s?%s&%s=%s", c.cfg.PayURL, encoded, hashParam, signature), nil
}

// Verify recomputes the digest over the callback params, excluding the hash
// fields themselves, and compares in constant time.
func (c *Client) Verify(params url.Values) bool {
	provided := params.Get(hashParam)
	if provided == "" {
		return false
	}

	filtered := url.Values{}
	for key, values := range params {
		if key == hashParam || key == hashTypeKey {
			continue
		}
		for _, v := range values {
			filtered.Add(key, v)
		}
	}

	expected := c.hmacHex(filtered.Encode())
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

func (c *Client) hmacHex(data string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
