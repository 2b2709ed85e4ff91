// Package gateway wraps the Razorpay-compatible payment provider:
// creating a payable provider order, fetching a payment's status, and
// computing the HMAC signature that binds an order id to a payment id.
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
)

// ProviderOrder is the provider-side record created before the user
// pays, referenced by its opaque id.
type ProviderOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Payment is the provider's view of a captured (or failed) payment.
type Payment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

type Client struct {
	http    *resty.Client
	cb      *gobreaker.CircuitBreaker
	keyID   string
	secret  string
	baseURL string
}

func New(keyID, secret, baseURL string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "razorpay",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && ratio >= 0.6
		},
	})
	return &Client{
		http: resty.New().
			SetTimeout(10 * time.Second).
			SetRetryCount(0), // failures feed the circuit breaker instead
		cb:      cb,
		keyID:   keyID,
		secret:  secret,
		baseURL: baseURL,
	}
}

// Configured reports whether provider credentials are present. An
// unconfigured client answers every call with ErrGatewayUnavailable.
func (c *Client) Configured() bool {
	return c != nil && c.keyID != "" && c.secret != ""
}

// BreakerState exposes the circuit state for the health endpoint.
func (c *Client) BreakerState() string {
	if c == nil {
		return "unconfigured"
	}
	return c.cb.State().String()
}

// CreateOrder registers a payable order with the provider. amount is in
// currency major units and is converted to minor units with decimal
// rounding (549.50 INR -> 54950 paise).
func (c *Client) CreateOrder(amount float64, currency, receipt string) (*ProviderOrder, error) {
	if !c.Configured() {
		return nil, apperrors.ErrGatewayUnavailable
	}

	minor := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	body := map[string]any{
		"amount":          minor,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	out, err := c.cb.Execute(func() (any, error) {
		var po ProviderOrder
		resp, err := c.http.R().
			SetHeader("Content-Type", "application/json").
			SetBasicAuth(c.keyID, c.secret).
			SetBody(body).
			SetResult(&po).
			Post(c.baseURL + "/v1/orders")
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode(), resp.String())
		}
		return &po, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	return out.(*ProviderOrder), nil
}

// FetchPayment reads the payment's current status from the provider.
// Signature validity alone proves the payload wasn't forged, not that
// funds were captured; callers must check this too.
func (c *Client) FetchPayment(paymentID string) (*Payment, error) {
	if !c.Configured() {
		return nil, apperrors.ErrGatewayUnavailable
	}

	out, err := c.cb.Execute(func() (any, error) {
		var p Payment
		resp, err := c.http.R().
			SetBasicAuth(c.keyID, c.secret).
			SetResult(&p).
			Get(c.baseURL + "/v1/payments/" + paymentID)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode(), resp.String())
		}
		return &p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	return out.(*Payment), nil
}

// Signature computes the hex HMAC-SHA256 over "orderID|paymentID" with
// the shared secret the client never sees.
func (c *Client) Signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the expected signature and compares in
// constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	expected := c.Signature(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
