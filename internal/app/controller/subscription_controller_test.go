package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/payment/razorpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *apiEnv) checkout(t *testing.T, token string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/subscriptions/checkout", token, map[string]interface{}{
		"plan":   "premium",
		"amount": 50000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OrderID  string `json:"orderId"`
		KeyID    string `json:"keyId"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "rzp_test_key", resp.KeyID)
	assert.EqualValues(t, 50000, resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	return resp.OrderID
}

func (e *apiEnv) webhook(t *testing.T, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytesReader(body))
	req.Header.Set(razorpay.SignatureHeader, signature)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func paymentCaptured(t *testing.T, paymentID, orderID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": razorpay.EventPaymentCaptured,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"order_id": orderID,
					"amount":   50000,
					"currency": "INR",
					"status":   "captured",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func subscriptionRows(t *testing.T, env *apiEnv) []model.Subscription {
	var rows []model.Subscription
	require.NoError(t, env.db.Order("id").Find(&rows).Error)
	return rows
}

func TestSubscriptionController_Checkout(t *testing.T) {
	env := setupAPITest(t)
	token := env.signUp(t, "owner@example.com")

	tests := []struct {
		name     string
		token    string
		body     map[string]interface{}
		wantCode int
	}{
		{"unauthenticated", "", map[string]interface{}{"plan": "premium", "amount": 50000}, http.StatusUnauthorized},
		{"missing plan", token, map[string]interface{}{"amount": 50000}, http.StatusBadRequest},
		{"unknown plan", token, map[string]interface{}{"plan": "gold", "amount": 50000}, http.StatusBadRequest},
		{"wrong amount", token, map[string]interface{}{"plan": "premium", "amount": 100}, http.StatusBadRequest},
		{"missing amount", token, map[string]interface{}{"plan": "premium"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/subscriptions/checkout", tt.token, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
	assert.Empty(t, subscriptionRows(t, env))

	orderID := env.checkout(t, token)
	rows := subscriptionRows(t, env)
	require.Len(t, rows, 1)
	assert.Equal(t, orderID, rows[0].RazorpayOrderID)
	assert.Equal(t, model.SubscriptionStatusInactive, rows[0].Status)
}

func TestSubscriptionController_WebhookActivatesPremium(t *testing.T) {
	env := setupAPITest(t)
	token := env.signUp(t, "owner@example.com")

	w := env.do(t, http.MethodGet, "/api/v1/analytics", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	var upgrade middleware.UpgradeResponse
	decode(t, w, &upgrade)
	assert.Equal(t, apperrors.AuthzUpgradeRequired, upgrade.Code)
	assert.Equal(t, "/pricing?upgrade=required&feature=%2Fapi%2Fv1%2Fanalytics", upgrade.UpgradeURL)

	orderID := env.checkout(t, token)
	body := paymentCaptured(t, "pay_1", orderID)

	t.Run("bad signature changes nothing", func(t *testing.T) {
		before := subscriptionRows(t, env)
		w := env.webhook(t, body, "deadbeef")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.PaymentSignatureInvalid, errorCode(t, w))
		assert.Equal(t, before, subscriptionRows(t, env))
	})

	t.Run("signed capture activates", func(t *testing.T) {
		w := env.webhook(t, body, razorpay.Sign(body, testWebhookSecret))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		rows := subscriptionRows(t, env)
		require.Len(t, rows, 1)
		assert.Equal(t, model.SubscriptionStatusActive, rows[0].Status)
		assert.True(t, rows[0].IsActive)
		assert.Equal(t, "pay_1", rows[0].RazorpayPaymentID)
		require.NotNil(t, rows[0].ExpiresAt)
	})

	t.Run("premium routes open", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/analytics", token, nil).Code)
		w := env.do(t, http.MethodGet, "/api/v1/exports/invoices.xlsx", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	})

	t.Run("status reports the row", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/subscriptions/status", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"active"`)
	})
}

func TestSubscriptionController_WebhookAcknowledgesOtherEvents(t *testing.T) {
	env := setupAPITest(t)

	tests := []struct {
		name string
		body []byte
	}{
		{"unhandled event", []byte(`{"event":"refund.created","payload":{}}`)},
		{"capture for unknown order", paymentCaptured(t, "pay_9", "order_missing")},
		{"not json", []byte(`not json`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.webhook(t, tt.body, razorpay.Sign(tt.body, testWebhookSecret))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
	assert.Empty(t, subscriptionRows(t, env))
}

func TestSubscriptionController_StatusCancelRenew(t *testing.T) {
	env := setupAPITest(t)
	token := env.signUp(t, "owner@example.com")

	w := env.do(t, http.MethodGet, "/api/v1/subscriptions/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscription":null}`, w.Body.String())

	env.checkout(t, token)
	id := subscriptionRows(t, env)[0].ID

	other := env.signUp(t, "other@example.com")
	w = env.do(t, http.MethodPost, "/api/v1/subscriptions/cancel", other, map[string]uint{"subscriptionId": id})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/subscriptions/renew", token, map[string]uint{"subscriptionId": id})
	require.Equal(t, http.StatusOK, w.Code)
	var renewed struct {
		OrderID string `json:"orderId"`
	}
	decode(t, w, &renewed)
	assert.Equal(t, renewed.OrderID, subscriptionRows(t, env)[0].RazorpayOrderID)

	w = env.do(t, http.MethodPost, "/api/v1/subscriptions/cancel", token, map[string]uint{"subscriptionId": id})
	require.Equal(t, http.StatusOK, w.Code)
	rows := subscriptionRows(t, env)
	assert.Equal(t, model.SubscriptionStatusCancelled, rows[0].Status)
	assert.NotNil(t, rows[0].CancelledAt)
}
