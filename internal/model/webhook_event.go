package model

import "time"

// WebhookEvent is one row in the webhook idempotency ledger. The unique key
// (event_type, conversation_id, status) makes repeated delivery of the same
// gateway event a single logical occurrence.
type WebhookEvent struct {
	ID             string     `json:"id" db:"id"`
	EventType      string     `json:"event_type" db:"event_type"`
	ConversationID string     `json:"conversation_id" db:"conversation_id"`
	Status         string     `json:"status" db:"status"`
	PaymentID      string     `json:"payment_id" db:"payment_id"`
	Payload        string     `json:"payload" db:"payload"`
	HandledAt      *time.Time `json:"handled_at,omitempty" db:"handled_at"`
	HandlerError   string     `json:"handler_error,omitempty" db:"handler_error"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
