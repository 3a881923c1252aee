package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/edvin/billing/internal/iyzico"
	"github.com/edvin/billing/internal/platform"
)

var webhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Total number of inbound webhook events by type and result",
	},
	[]string{"event_type", "result"},
)

// WebhookObserver receives lifecycle notifications around event dispatch.
type WebhookObserver interface {
	WebhookReceived(p *iyzico.WebhookPayload)
	WebhookHandled(p *iyzico.WebhookPayload)
}

type webhookHandler func(ctx context.Context, p *iyzico.WebhookPayload) error

// WebhookService maps inbound gateway events to handlers. The event table is
// closed and explicit; unknown event types fall through to a logged no-op so
// the gateway is never given a reason to retry delivery. Each distinct
// (event type, conversation id, status) tuple is applied at most once,
// backed by the webhook_events ledger.
type WebhookService struct {
	db        DB
	subs      *SubscriptionService
	logger    zerolog.Logger
	handlers  map[string]webhookHandler
	observers []WebhookObserver
}

func NewWebhookService(db DB, subs *SubscriptionService, logger zerolog.Logger) *WebhookService {
	s := &WebhookService{db: db, subs: subs, logger: logger}
	s.handlers = map[string]webhookHandler{
		iyzico.EventSubscriptionPaymentSucceeded: s.handlePaymentSucceeded,
		iyzico.EventSubscriptionPaymentFailed:    s.handlePaymentFailed,
		iyzico.EventPaymentAPI:                   s.handlePaymentAPI,
		iyzico.EventAPIAuth:                      s.handlePaymentAPI,
		iyzico.EventThreeDSAuth:                  s.handlePaymentAPI,
		iyzico.EventThreeDSCallback:              s.handlePaymentAPI,
		iyzico.EventRefundRetrySuccess:           s.handleRefundRetrySuccess,
		iyzico.EventRefundRetryFailure:           s.handleRefundRetryFailure,
	}
	return s
}

// Subscribe registers an observer for received/handled notifications.
// Intended for wiring at startup, not concurrent use.
func (s *WebhookService) Subscribe(o WebhookObserver) {
	s.observers = append(s.observers, o)
}

// Handle applies one inbound event. It never returns an error for handler
// failures: those are logged and recorded on the ledger row, and the caller
// acknowledges the delivery regardless, to avoid gateway-side retry storms.
// Only a ledger write failure is surfaced.
func (s *WebhookService) Handle(ctx context.Context, p *iyzico.WebhookPayload) error {
	for _, o := range s.observers {
		o.WebhookReceived(p)
	}

	fresh, err := s.recordEvent(ctx, p)
	if err != nil {
		webhookEventsTotal.WithLabelValues(p.EventType, "error").Inc()
		return err
	}
	if !fresh {
		s.logger.Info().
			Str("event_type", p.EventType).
			Str("conversation_id", p.ConversationID).
			Str("status", p.Status).
			Msg("duplicate webhook delivery ignored")
		webhookEventsTotal.WithLabelValues(p.EventType, "duplicate").Inc()
		return nil
	}

	handler, ok := s.handlers[p.EventType]
	if !ok {
		s.logger.Info().
			Str("event_type", p.EventType).
			Str("conversation_id", p.ConversationID).
			Msg("webhook received but no handler registered")
		webhookEventsTotal.WithLabelValues(p.EventType, "ignored").Inc()
		s.markHandled(ctx, p, nil)
		return nil
	}

	if err := s.dispatch(ctx, handler, p); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", p.EventType).
			Str("conversation_id", p.ConversationID).
			Msg("webhook handler failed")
		webhookEventsTotal.WithLabelValues(p.EventType, "failed").Inc()
		s.markHandled(ctx, p, err)
		return nil
	}

	webhookEventsTotal.WithLabelValues(p.EventType, "handled").Inc()
	s.markHandled(ctx, p, nil)

	for _, o := range s.observers {
		o.WebhookHandled(p)
	}
	return nil
}

// dispatch runs the handler, converting panics into errors so a single bad
// payload cannot take the process down or leak a non-200 to the gateway.
func (s *WebhookService) dispatch(ctx context.Context, handler webhookHandler, p *iyzico.WebhookPayload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webhook handler panic: %v", r)
		}
	}()
	return handler(ctx, p)
}

// recordEvent inserts the ledger row. Returns false when an identical event
// was already recorded, which makes repeated delivery a single logical
// occurrence even across restarts.
func (s *WebhookService) recordEvent(ctx context.Context, p *iyzico.WebhookPayload) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO webhook_events (id, event_type, conversation_id, status, payment_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (event_type, conversation_id, status) DO NOTHING`,
		platform.NewID(), p.EventType, p.ConversationID, p.Status, s.paymentID(p), string(p.Raw),
	)
	if err != nil {
		return false, fmt.Errorf("record webhook event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *WebhookService) markHandled(ctx context.Context, p *iyzico.WebhookPayload, handlerErr error) {
	msg := ""
	if handlerErr != nil {
		msg = handlerErr.Error()
	}
	_, err := s.db.Exec(ctx,
		`UPDATE webhook_events SET handled_at = now(), handler_error = $1
		 WHERE event_type = $2 AND conversation_id = $3 AND status = $4`,
		msg, p.EventType, p.ConversationID, p.Status,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", p.EventType).Msg("mark webhook event handled")
	}
}

func (s *WebhookService) handlePaymentSucceeded(ctx context.Context, p *iyzico.WebhookPayload) error {
	err := s.subs.MarkPaymentSucceeded(ctx, p.ConversationID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn().
			Str("conversation_id", p.ConversationID).
			Msg("payment succeeded for unknown subscription")
		return nil
	}
	return err
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, p *iyzico.WebhookPayload) error {
	err := s.subs.MarkPaymentFailed(ctx, p.ConversationID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn().
			Str("conversation_id", p.ConversationID).
			Msg("payment failed for unknown subscription")
		return nil
	}
	if err == nil {
		s.logger.Warn().
			Str("conversation_id", p.ConversationID).
			Str("payment_id", s.paymentID(p)).
			Msg("subscription payment failed")
	}
	return err
}

// handlePaymentAPI sub-dispatches on the payment status field. Statuses
// other than SUCCESS and FAILURE are acknowledged without a transition.
func (s *WebhookService) handlePaymentAPI(ctx context.Context, p *iyzico.WebhookPayload) error {
	switch p.Status {
	case iyzico.WebhookStatusSuccess:
		return s.handlePaymentSucceeded(ctx, p)
	case iyzico.WebhookStatusFailure:
		return s.handlePaymentFailed(ctx, p)
	default:
		return nil
	}
}

func (s *WebhookService) handleRefundRetrySuccess(_ context.Context, p *iyzico.WebhookPayload) error {
	s.logger.Info().
		Str("conversation_id", p.ConversationID).
		Str("payment_id", s.paymentID(p)).
		Msg("refund succeeded")
	return nil
}

func (s *WebhookService) handleRefundRetryFailure(_ context.Context, p *iyzico.WebhookPayload) error {
	s.logger.Warn().
		Str("conversation_id", p.ConversationID).
		Str("payment_id", s.paymentID(p)).
		Msg("refund failed")
	return nil
}

func (s *WebhookService) paymentID(p *iyzico.WebhookPayload) string {
	if p.IyziPaymentID != "" {
		return p.IyziPaymentID
	}
	return p.PaymentID
}
