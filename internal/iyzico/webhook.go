package iyzico

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// SignatureHeader carries the hex HMAC-SHA256 signature on every webhook
// delivery. Requests without it are rejected before any HMAC computation.
const SignatureHeader = "X-IYZ-SIGNATURE-V3"

// Webhook event types the gateway delivers.
const (
	EventSubscriptionPaymentSucceeded = "subscription_payment_succeeded"
	EventSubscriptionPaymentFailed    = "subscription_payment_failed"
	EventPaymentAPI                   = "payment_api"
	EventAPIAuth                      = "api_auth"
	EventThreeDSAuth                  = "three_ds_auth"
	EventThreeDSCallback              = "three_ds_callback"
	EventRefundRetrySuccess           = "refund_retry_success"
	EventRefundRetryFailure           = "refund_retry_failure"
)

// Webhook payment status values used for sub-dispatch.
const (
	WebhookStatusSuccess = "SUCCESS"
	WebhookStatusFailure = "FAILURE"
)

// WebhookPayload is the decoded body of an inbound webhook call. Two shapes
// exist: the direct format identified by paymentId, and the hosted payment
// page format identified by a token plus iyziPaymentId. Absent fields decode
// to empty strings.
type WebhookPayload struct {
	EventType      string
	PaymentID      string
	IyziPaymentID  string
	Token          string
	ConversationID string
	Status         string
	Raw            []byte
}

// IsHosted reports whether the payload uses the hosted payment page format.
func (p *WebhookPayload) IsHosted() bool {
	return p.Token != ""
}

// ParseWebhookPayload decodes a webhook body. The gateway sends some
// identifier fields as JSON numbers, so each field is stringified rather
// than decoded into a typed struct.
func ParseWebhookPayload(body []byte) (*WebhookPayload, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	return &WebhookPayload{
		EventType:      stringField(fields, "iyziEventType"),
		PaymentID:      stringField(fields, "paymentId"),
		IyziPaymentID:  stringField(fields, "iyziPaymentId"),
		Token:          stringField(fields, "token"),
		ConversationID: stringField(fields, "paymentConversationId"),
		Status:         stringField(fields, "status"),
		Raw:            body,
	}, nil
}

// ParseWebhookForm decodes a form-encoded webhook body. The gateway delivers
// some event types as application/x-www-form-urlencoded rather than JSON;
// the field names match the JSON shape.
func ParseWebhookForm(body []byte) (*WebhookPayload, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("decode webhook form: %w", err)
	}

	return &WebhookPayload{
		EventType:      values.Get("iyziEventType"),
		PaymentID:      values.Get("paymentId"),
		IyziPaymentID:  values.Get("iyziPaymentId"),
		Token:          values.Get("token"),
		ConversationID: values.Get("paymentConversationId"),
		Status:         values.Get("status"),
		Raw:            body,
	}, nil
}

// WebhookSignature computes the expected signature for a payload. The
// canonical field ordering depends on the payload shape: hosted payment page
// payloads include the gateway payment id and token, direct payloads the
// plain payment id.
func WebhookSignature(secretKey string, p *WebhookPayload) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(secretKey))
	mac.Write([]byte(p.EventType))
	if p.IsHosted() {
		mac.Write([]byte(p.IyziPaymentID))
		mac.Write([]byte(p.Token))
	} else {
		mac.Write([]byte(p.PaymentID))
	}
	mac.Write([]byte(p.ConversationID))
	mac.Write([]byte(p.Status))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the supplied signature against the payload using a
// constant-time comparison.
func VerifyWebhook(secretKey string, p *WebhookPayload, signature string) bool {
	if signature == "" {
		return false
	}
	expected := WebhookSignature(secretKey, p)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
