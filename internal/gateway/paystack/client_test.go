package paystack

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"events-system/internal/status"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(&ClientConfig{
		BaseURL:   url,
		SecretKey: "sk_test_secret",
		Timeout:   timeout,
	})
}

func TestVerifyTransaction_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-abc", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"status": true,
			"message": "Verification successful",
			"data": {
				"reference": "ref-abc",
				"status": "Success",
				"amount": 500000,
				"currency": "NGN",
				"paid_at": "2026-08-30T21:15:00.000Z",
				"channel": "card"
			}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	result, err := client.VerifyTransaction(context.Background(), "ref-abc")

	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "ref-abc", result.Reference)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(5000)), "kobo converted to naira, got %s", result.Amount)
	assert.Equal(t, int64(500000), result.AmountMinor)
	assert.Equal(t, "success", result.Status, "status is canonicalized to lowercase")
	assert.Equal(t, "NGN", result.Currency)
	assert.Equal(t, "card", result.Channel)
}

func TestVerifyTransaction_FailedCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"status": true,
			"message": "Verification successful",
			"data": {
				"reference": "ref-failed",
				"status": "failed",
				"amount": 500000,
				"currency": "NGN"
			}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	result, err := client.VerifyTransaction(context.Background(), "ref-failed")

	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "failed", result.Status)
}

func TestVerifyTransaction_AbandonedCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": true, "data": {"reference": "ref-ab", "status": "Abandoned", "amount": 0}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	result, err := client.VerifyTransaction(context.Background(), "ref-ab")

	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "abandoned", result.Status)
}

func TestVerifyTransaction_UnknownReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status": false, "message": "Transaction reference not found"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	result, err := client.VerifyTransaction(context.Background(), "ref-unknown")

	require.NoError(t, err, "an unknown reference is an unverified result, not a transport error")
	assert.False(t, result.Verified)
	assert.Equal(t, "ref-unknown", result.Reference)
	assert.Equal(t, "failed", result.Status)
	assert.Equal(t, "NGN", result.Currency)
}

func TestVerifyTransaction_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 50*time.Millisecond)
	_, err := client.VerifyTransaction(context.Background(), "ref-slow")

	assert.ErrorIs(t, err, status.ErrGatewayTimeout)
}

func TestVerifyTransaction_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL, time.Second)
	_, err := client.VerifyTransaction(context.Background(), "ref-down")

	assert.ErrorIs(t, err, status.ErrGatewayFailure)
}

func TestVerifyTransaction_ReferenceIsPathEscaped(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{"status": true, "data": {"status": "success", "amount": 100}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	result, err := client.VerifyTransaction(context.Background(), "ref/../etc")

	require.NoError(t, err)
	assert.Equal(t, "/transaction/verify/ref%2F..%2Fetc", gotPath)
	// The gateway did not echo a reference, so the request's is kept.
	assert.Equal(t, "ref/../etc", result.Reference)
}
