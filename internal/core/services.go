package core

import "github.com/rs/zerolog"

type Services struct {
	Subscription *SubscriptionService
	Webhook      *WebhookService
}

func NewServices(db DB, gw Gateway, logger zerolog.Logger) *Services {
	subscription := NewSubscriptionService(db, gw)
	return &Services{
		Subscription: subscription,
		Webhook:      NewWebhookService(db, subscription, logger),
	}
}
