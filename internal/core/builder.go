package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edvin/billing/internal/iyzico"
	"github.com/edvin/billing/internal/model"
	"github.com/edvin/billing/internal/platform"
)

// PlanDetails describes the pricing plan created when no existing plan
// reference is supplied.
type PlanDetails struct {
	Price         string
	Currency      string
	Interval      string
	IntervalCount int
}

// SubscriptionBuilder drives the remote provisioning sequence: ensure a
// product exists, ensure a pricing plan exists under it, create the
// subscription, and only then persist the local record. Completed remote
// steps are not rolled back on a later failure; ProvisioningError carries
// the partial references so callers can reuse them on retry.
type SubscriptionBuilder struct {
	svc       *SubscriptionService
	gw        Gateway
	ownerID   string
	name      string
	plan      string
	planRef   string
	trialDays int
	skipTrial bool
}

// NewSubscription begins building a subscription in the named seat for the
// owner. plan is the human-readable plan name used for remote catalog
// resources.
func (s *SubscriptionService) NewSubscription(ownerID, name, plan string) *SubscriptionBuilder {
	return &SubscriptionBuilder{svc: s, gw: s.gw, ownerID: ownerID, name: name, plan: plan}
}

func (b *SubscriptionBuilder) TrialDays(days int) *SubscriptionBuilder {
	b.trialDays = days
	return b
}

func (b *SubscriptionBuilder) SkipTrial() *SubscriptionBuilder {
	b.skipTrial = true
	return b
}

// WithPlanReference skips product and plan creation and subscribes directly
// against an existing pricing plan.
func (b *SubscriptionBuilder) WithPlanReference(ref string) *SubscriptionBuilder {
	b.planRef = ref
	return b
}

// Create provisions the full product → plan → subscription sequence and
// persists the local record.
func (b *SubscriptionBuilder) Create(ctx context.Context, customer iyzico.Customer, card iyzico.PaymentCard, details PlanDetails) (*model.Subscription, error) {
	unlock := b.svc.locks.lock(b.seatKey())
	defer unlock()

	if err := b.checkNotSubscribed(ctx); err != nil {
		return nil, err
	}

	planRef := b.planRef
	var productRef string
	if planRef == "" {
		product, err := b.gw.CreateProduct(ctx, iyzico.CreateProductRequest{
			Name: b.plan,
		})
		if err != nil {
			return nil, &ProvisioningError{Step: StepProduct, Err: err}
		}
		productRef = product.ReferenceCode

		interval := details.Interval
		if interval == "" {
			interval = model.IntervalMonthly
		}
		intervalCount := details.IntervalCount
		if intervalCount == 0 {
			intervalCount = 1
		}
		plan, err := b.gw.CreatePricingPlan(ctx, iyzico.CreatePricingPlanRequest{
			ProductReferenceCode: productRef,
			Name:                 fmt.Sprintf("%s-%s", b.plan, interval),
			Price:                details.Price,
			CurrencyCode:         details.Currency,
			PaymentInterval:      interval,
			PaymentIntervalCount: intervalCount,
			TrialPeriodDays:      b.effectiveTrialDays(),
			PlanPaymentType:      "RECURRING",
		})
		if err != nil {
			return nil, &ProvisioningError{Step: StepPricingPlan, ProductRef: productRef, Err: err}
		}
		planRef = plan.ReferenceCode
	}

	return b.createSubscription(ctx, customer, card, productRef, planRef)
}

// CreateDirect subscribes against a pre-existing pricing plan reference,
// skipping product and plan creation. Asking for direct creation without a
// reference is a configuration error.
func (b *SubscriptionBuilder) CreateDirect(ctx context.Context, customer iyzico.Customer, card iyzico.PaymentCard) (*model.Subscription, error) {
	if b.planRef == "" {
		return nil, ErrPlanReferenceRequired
	}

	unlock := b.svc.locks.lock(b.seatKey())
	defer unlock()

	if err := b.checkNotSubscribed(ctx); err != nil {
		return nil, err
	}
	return b.createSubscription(ctx, customer, card, "", b.planRef)
}

// seatKey serializes creation per (owner, name) so concurrent creates cannot
// both pass the pre-flight check. The database's partial unique index on open
// seats backs this up across processes.
func (b *SubscriptionBuilder) seatKey() string {
	return b.ownerID + "/" + b.name
}

func (b *SubscriptionBuilder) checkNotSubscribed(ctx context.Context) error {
	existing, err := b.svc.GetByOwnerAndName(ctx, b.ownerID, b.name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil && existing.Valid() {
		return fmt.Errorf("%w: owner %s already holds subscription %q", ErrAlreadySubscribed, b.ownerID, b.name)
	}
	return nil
}

func (b *SubscriptionBuilder) createSubscription(ctx context.Context, customer iyzico.Customer, card iyzico.PaymentCard, productRef, planRef string) (*model.Subscription, error) {
	conversationID := platform.NewConversationID()

	remote, err := b.gw.CreateSubscription(ctx, iyzico.CreateSubscriptionRequest{
		ConversationID:            conversationID,
		PricingPlanReferenceCode:  planRef,
		SubscriptionInitialStatus: model.StatusPending,
		Customer:                  customer,
		PaymentCard:               card,
	})
	if err != nil {
		return nil, &ProvisioningError{Step: StepSubscription, ProductRef: productRef, PlanRef: planRef, Err: err}
	}

	now := time.Now().UTC()
	sub := &model.Subscription{
		ID:             platform.NewID(),
		OwnerID:        b.ownerID,
		Name:           b.name,
		ConversationID: conversationID,
		IyzicoID:       remote.ReferenceCode,
		IyzicoPlan:     planRef,
		IyzicoStatus:   remote.SubscriptionStatus,
		TrialEndsAt:    b.trialExpiration(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if sub.IyzicoStatus == "" {
		sub.IyzicoStatus = model.StatusPending
	}

	if err := b.svc.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *SubscriptionBuilder) effectiveTrialDays() int {
	if b.skipTrial {
		return 0
	}
	return b.trialDays
}

func (b *SubscriptionBuilder) trialExpiration(now time.Time) *time.Time {
	days := b.effectiveTrialDays()
	if days == 0 {
		return nil
	}
	t := now.AddDate(0, 0, days)
	return &t
}
