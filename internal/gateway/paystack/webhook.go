package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
)

// WebhookEvent is the subset of the gateway's webhook payload the
// reconciliation flow consumes.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		PaidAt    string `json:"paid_at"`
		Customer  struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Phone     string `json:"phone"`
		} `json:"customer"`
	} `json:"data"`
}

// Hmac512 generates the hex HMAC-SHA512 of body under key.
func Hmac512(body, key []byte) string {
	hash := hmac.New(sha512.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

// ValidSignature reports whether the x-paystack-signature header
// matches the request body under the secret key.
func ValidSignature(body []byte, signature, secretKey string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Hmac512(body, []byte(secretKey))), []byte(signature))
}

// ParseWebhook decodes a signed webhook body.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
