package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SignatureHeader carries hex(HMAC-SHA256(webhook secret, raw body))
const SignatureHeader = "X-Razorpay-Signature"

const (
	EventPaymentCaptured     = "payment.captured"
	EventSubscriptionCharged = "subscription.charged"
)

// Sign returns the hex HMAC-SHA256 of body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature compares in constant time. An empty secret or
// signature never verifies.
func VerifyWebhookSignature(body []byte, signature, secret string) error {
	if secret == "" || signature == "" {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(signature), []byte(Sign(body, secret))) {
		return ErrInvalidSignature
	}
	return nil
}

// WebhookEvent is the envelope of every webhook delivery.
type WebhookEvent struct {
	Event     string         `json:"event"`
	AccountID string         `json:"account_id"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment *struct {
		Entity Payment `json:"entity"`
	} `json:"payment,omitempty"`
	Order *struct {
		Entity Order `json:"entity"`
	} `json:"order,omitempty"`
	Subscription *struct {
		Entity Subscription `json:"entity"`
	} `json:"subscription,omitempty"`
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if event.Event == "" {
		return nil, fmt.Errorf("decode webhook: missing event")
	}
	return &event, nil
}
