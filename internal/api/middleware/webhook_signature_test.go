package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/billing/internal/iyzico"
)

const testSecret = "test-secret-key"

func webhookBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"iyziEventType":         "subscription_payment_succeeded",
		"paymentId":             12345,
		"paymentConversationId": "conv1234567890ab",
		"status":                "SUCCESS",
	})
	require.NoError(t, err)
	return body
}

func signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()
	payload, err := iyzico.ParseWebhookPayload(body)
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/webhooks/iyzico", bytes.NewReader(body))
	r.Header.Set(iyzico.SignatureHeader, iyzico.WebhookSignature(testSecret, payload))
	return r
}

func verifiedHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		payload := PayloadFromContext(r.Context())
		require.NotNil(t, payload, "handler must see the verified payload")
		assert.Equal(t, "conv1234567890ab", payload.ConversationID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestWebhookSignature_ValidDelivery(t *testing.T) {
	called := false
	mw := WebhookSignature(testSecret)
	rec := httptest.NewRecorder()

	mw(verifiedHandler(t, &called)).ServeHTTP(rec, signedRequest(t, webhookBody(t)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestWebhookSignature_MissingHeader(t *testing.T) {
	called := false
	mw := WebhookSignature(testSecret)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest("POST", "/webhooks/iyzico", bytes.NewReader(webhookBody(t)))
	mw(verifiedHandler(t, &called)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called, "unsigned deliveries never reach the handler")
}

func TestWebhookSignature_TamperedBody(t *testing.T) {
	called := false
	mw := WebhookSignature(testSecret)
	rec := httptest.NewRecorder()

	r := signedRequest(t, webhookBody(t))
	tampered, _ := json.Marshal(map[string]any{
		"iyziEventType":         "subscription_payment_succeeded",
		"paymentId":             99999,
		"paymentConversationId": "conv1234567890ab",
		"status":                "SUCCESS",
	})
	r.Body = httptest.NewRequest("POST", "/", bytes.NewReader(tampered)).Body

	mw(verifiedHandler(t, &called)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestWebhookSignature_WrongSecret(t *testing.T) {
	called := false
	mw := WebhookSignature("another-secret")
	rec := httptest.NewRecorder()

	mw(verifiedHandler(t, &called)).ServeHTTP(rec, signedRequest(t, webhookBody(t)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestWebhookSignature_MalformedBody(t *testing.T) {
	called := false
	mw := WebhookSignature(testSecret)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest("POST", "/webhooks/iyzico", bytes.NewBufferString("{not json"))
	r.Header.Set(iyzico.SignatureHeader, "deadbeef")
	mw(verifiedHandler(t, &called)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestWebhookSignature_FormEncodedDelivery(t *testing.T) {
	form := url.Values{}
	form.Set("iyziEventType", "subscription_payment_succeeded")
	form.Set("paymentId", "12345")
	form.Set("paymentConversationId", "conv1234567890ab")
	form.Set("status", "SUCCESS")
	body := []byte(form.Encode())

	payload, err := iyzico.ParseWebhookForm(body)
	require.NoError(t, err)

	called := false
	mw := WebhookSignature(testSecret)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest("POST", "/webhooks/iyzico", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set(iyzico.SignatureHeader, iyzico.WebhookSignature(testSecret, payload))

	mw(verifiedHandler(t, &called)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code, "form-encoded deliveries verify like JSON ones")
	assert.True(t, called)
}

func TestWebhookSignature_FormEncodedTampered(t *testing.T) {
	form := url.Values{}
	form.Set("iyziEventType", "subscription_payment_succeeded")
	form.Set("paymentId", "12345")
	form.Set("paymentConversationId", "conv1234567890ab")
	form.Set("status", "SUCCESS")

	payload, err := iyzico.ParseWebhookForm([]byte(form.Encode()))
	require.NoError(t, err)
	signature := iyzico.WebhookSignature(testSecret, payload)

	form.Set("status", "FAILURE")

	called := false
	mw := WebhookSignature(testSecret)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest("POST", "/webhooks/iyzico", bytes.NewBufferString(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set(iyzico.SignatureHeader, signature)

	mw(verifiedHandler(t, &called)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestWebhookSignature_HostedPaymentPageFormat(t *testing.T) {
	body, err := json.Marshal(map[string]any{
		"iyziEventType":         "three_ds_callback",
		"iyziPaymentId":         67890,
		"token":                 "tok-abc",
		"paymentConversationId": "conv1234567890ab",
		"status":                "SUCCESS",
	})
	require.NoError(t, err)

	called := false
	mw := WebhookSignature(testSecret)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		payload := PayloadFromContext(r.Context())
		require.NotNil(t, payload)
		assert.True(t, payload.IsHosted())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, signedRequest(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
