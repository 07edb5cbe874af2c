// Package paystack is the HTTP client for the payment gateway's
// transaction verification endpoint. It is read-only: callers decide
// what to do with a confirmed or rejected reference.
package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"events-system/internal/status"

	"github.com/shopspring/decimal"
)

type ClientConfig struct {
	BaseURL   string        `json:"baseUrl"`
	SecretKey string        `json:"secretKey"`
	Timeout   time.Duration `json:"timeout"`
}

type Client struct {
	// baseURL is the base url of the Paystack API.
	baseURL string

	// secretKey authenticates every request as a Bearer token.
	secretKey string

	// hc is the http client.
	hc *http.Client
}

// Verification is the canonical result of a gateway lookup. Amount is
// in major currency units (naira); AmountMinor keeps the raw kobo
// figure the gateway reported.
type Verification struct {
	Verified    bool            `json:"verified"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	AmountMinor int64           `json:"amount_kobo"`
	Currency    string          `json:"currency"`
	PaidAt      string          `json:"paid_at"`
	Status      string          `json:"status"`
	Channel     string          `json:"channel,omitempty"`
}

var minorUnit = decimal.NewFromInt(100)

// NewClient creates a new Paystack client.
func NewClient(c *ClientConfig) *Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimSuffix(c.BaseURL, "/"),
		secretKey: c.SecretKey,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// VerifyTransaction checks a transaction reference against the
// gateway. A declined or unknown reference is a structured
// Verified=false result, not an error; only transport problems
// (status.ErrGatewayTimeout, status.ErrGatewayFailure) error out.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference)), nil)
	if err != nil {
		return nil, fmt.Errorf("verifyTransaction: http.NewReq: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, status.ErrGatewayTimeout
		}
		return nil, fmt.Errorf("verifyTransaction: http.Do: %v: %w", err, status.ErrGatewayFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The gateway rejects unknown references with non-200; treat as
		// an unverified result rather than a transport failure.
		return &Verification{
			Verified:  false,
			Reference: reference,
			Status:    "failed",
			Currency:  "NGN",
		}, nil
	}

	var reply struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
			Amount    int64  `json:"amount"`
			Currency  string `json:"currency"`
			PaidAt    string `json:"paid_at"`
			TxnDate   string `json:"transaction_date"`
			Channel   string `json:"channel"`
		} `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("verifyTransaction: json.Decode: %v: %w", err, status.ErrGatewayFailure)
	}

	canonical := strings.ToLower(reply.Data.Status)
	ref := reply.Data.Reference
	if ref == "" {
		ref = reference
	}
	currency := reply.Data.Currency
	if currency == "" {
		currency = "NGN"
	}
	paidAt := reply.Data.PaidAt
	if paidAt == "" {
		paidAt = reply.Data.TxnDate
	}

	return &Verification{
		Verified:    reply.Status && canonical == "success",
		Reference:   ref,
		Amount:      decimal.NewFromInt(reply.Data.Amount).Div(minorUnit),
		AmountMinor: reply.Data.Amount,
		Currency:    currency,
		PaidAt:      paidAt,
		Status:      canonical,
		Channel:     reply.Data.Channel,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
