package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/billing/internal/iyzico"
	"github.com/edvin/billing/internal/model"
)

const subscriptionColumns = `id, owner_id, name, conversation_id, iyzico_id, iyzico_plan, iyzico_status, trial_ends_at, ends_at, created_at, updated_at`

// UpgradeParams carries the gateway upgrade options.
type UpgradeParams struct {
	NewPlanReferenceCode string
	ResetRecurrenceCount bool
	UseTrial             bool
	// When is UpgradeNow or UpgradeNextPeriod.
	When string
}

// SubscriptionService owns the local subscription's status transitions.
// Mutations take a per-subscription lock around the read-modify-write cycle.
type SubscriptionService struct {
	db    DB
	gw    Gateway
	locks keyedMutex
}

func NewSubscriptionService(db DB, gw Gateway) *SubscriptionService {
	return &SubscriptionService{db: db, gw: gw}
}

func (s *SubscriptionService) Create(ctx context.Context, sub *model.Subscription) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.OwnerID, sub.Name, sub.ConversationID, sub.IyzicoID, sub.IyzicoPlan,
		sub.IyzicoStatus, sub.TrialEndsAt, sub.EndsAt, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		// Unique violation (23505) on the open-seat index: another create
		// won the race between our pre-flight check and this insert.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
			return fmt.Errorf("%w: owner %s already holds an open subscription %q", ErrAlreadySubscribed, sub.OwnerID, sub.Name)
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionService) GetByID(ctx context.Context, id string) (*model.Subscription, error) {
	return s.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
}

// GetByOwnerAndName returns the most recent subscription in the named seat.
func (s *SubscriptionService) GetByOwnerAndName(ctx context.Context, ownerID, name string) (*model.Subscription, error) {
	return s.get(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE owner_id = $1 AND name = $2
		 ORDER BY created_at DESC LIMIT 1`, ownerID, name)
}

// GetByConversationID resolves the subscription a webhook delivery refers to.
func (s *SubscriptionService) GetByConversationID(ctx context.Context, conversationID string) (*model.Subscription, error) {
	return s.get(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE conversation_id = $1 OR iyzico_id = $1
		 ORDER BY created_at DESC LIMIT 1`, conversationID)
}

func (s *SubscriptionService) ListByOwner(ctx context.Context, ownerID string, limit int, cursor string) ([]model.Subscription, bool, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE owner_id = $1`
	args := []any{ownerID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list subscriptions for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := scanSubscription(rows, &sub); err != nil {
			return nil, false, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate subscriptions: %w", err)
	}

	hasMore := len(subs) > limit
	if hasMore {
		subs = subs[:limit]
	}
	return subs, hasMore, nil
}

// Cancel schedules the subscription's termination. The billing period is
// fetched from the gateway BEFORE the remote cancel call: canceling
// invalidates that information server-side. On trial the termination lands
// on the trial end; otherwise on the UTC start-of-day of the next billing
// period. Calling Cancel on an already-canceled subscription is a no-op.
func (s *SubscriptionService) Cancel(ctx context.Context, ownerID, name string) (*model.Subscription, error) {
	sub, err := s.GetByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sub.ID)
	defer unlock()

	sub, err = s.GetByID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if sub.Canceled() {
		return sub, nil
	}

	now := time.Now().UTC()
	nextPeriod := now.UnixMilli()
	detail, err := s.gw.Detail(ctx, sub.IyzicoID)
	switch {
	case err == nil && len(detail.Orders) > 0:
		nextPeriod = detail.Orders[0].StartPeriod
	case err != nil && iyzico.IsUnavailable(err):
		return nil, err
	}

	if err := s.gw.Cancel(ctx, sub.IyzicoID); err != nil {
		// A business rejection means the gateway already considers the
		// subscription canceled; only transport failures abort.
		if _, ok := iyzico.AsAPIError(err); !ok {
			return nil, err
		}
	}

	endsAt := startOfDayUTC(time.UnixMilli(nextPeriod))
	if sub.OnTrialAt(now) {
		endsAt = *sub.TrialEndsAt
	}

	sub.IyzicoStatus = model.StatusCanceled
	sub.EndsAt = &endsAt
	if err := s.updateState(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Resume un-schedules a pending termination. The gateway offers no un-cancel
// primitive, so resume is a local-only mutation.
func (s *SubscriptionService) Resume(ctx context.Context, ownerID, name string) (*model.Subscription, error) {
	sub, err := s.GetByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sub.ID)
	defer unlock()

	sub, err = s.GetByID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if !sub.Canceled() {
		return nil, fmt.Errorf("%w: subscription is not canceled", ErrInvalidState)
	}

	sub.EndsAt = nil
	if err := s.updateState(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Retry re-attempts the last failed payment. A gateway business rejection is
// an expected outcome and reported as ok=false, not an error.
func (s *SubscriptionService) Retry(ctx context.Context, ownerID, name string) (bool, error) {
	return s.gatewayAction(ctx, ownerID, name, func(ctx context.Context, sub *model.Subscription) (string, error) {
		return s.gw.Retry(ctx, sub.IyzicoID)
	})
}

// Activate moves a PENDING subscription to ACTIVE at the gateway.
func (s *SubscriptionService) Activate(ctx context.Context, ownerID, name string) (bool, error) {
	return s.gatewayAction(ctx, ownerID, name, func(ctx context.Context, sub *model.Subscription) (string, error) {
		return s.gw.Activate(ctx, sub.IyzicoID)
	})
}

// Upgrade swaps the subscription onto a new pricing plan. The local entity
// keeps its identity; only the plan reference changes.
func (s *SubscriptionService) Upgrade(ctx context.Context, ownerID, name string, params UpgradeParams) (bool, error) {
	sub, err := s.GetByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return false, err
	}

	unlock := s.locks.lock(sub.ID)
	defer unlock()

	sub, err = s.GetByID(ctx, sub.ID)
	if err != nil {
		return false, err
	}

	when := params.When
	if when == "" {
		when = model.UpgradeNow
	}

	_, err = s.gw.Upgrade(ctx, sub.IyzicoID, iyzico.UpgradeRequest{
		NewPricingPlanReferenceCode: params.NewPlanReferenceCode,
		ResetRecurrenceCount:        params.ResetRecurrenceCount,
		UseTrial:                    params.UseTrial,
		UpgradePeriod:               when,
	})
	if err != nil {
		if _, ok := iyzico.AsAPIError(err); ok {
			return false, nil
		}
		return false, err
	}

	sub.IyzicoPlan = params.NewPlanReferenceCode
	sub.IyzicoStatus = model.StatusActive
	if err := s.updateState(ctx, sub); err != nil {
		return false, err
	}
	return true, nil
}

// RemoteDetail fetches the gateway's view of the subscription.
func (s *SubscriptionService) RemoteDetail(ctx context.Context, ownerID, name string) (*iyzico.SubscriptionDetail, error) {
	sub, err := s.GetByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	return s.gw.Detail(ctx, sub.IyzicoID)
}

// RemoteSearch lists subscriptions on the gateway side.
func (s *SubscriptionService) RemoteSearch(ctx context.Context, req iyzico.SearchRequest) (*iyzico.SearchResult, error) {
	return s.gw.Search(ctx, req)
}

// MarkPaymentSucceeded applies a successful payment notification: the
// subscription returns to good standing and any pending termination is
// cleared. Repeated application is naturally a no-op.
func (s *SubscriptionService) MarkPaymentSucceeded(ctx context.Context, conversationID string) error {
	return s.markPayment(ctx, conversationID, func(sub *model.Subscription) {
		sub.IyzicoStatus = model.StatusActive
		sub.EndsAt = nil
	})
}

// MarkPaymentFailed applies a failed payment notification.
func (s *SubscriptionService) MarkPaymentFailed(ctx context.Context, conversationID string) error {
	return s.markPayment(ctx, conversationID, func(sub *model.Subscription) {
		sub.IyzicoStatus = model.StatusUnpaid
	})
}

func (s *SubscriptionService) markPayment(ctx context.Context, conversationID string, apply func(*model.Subscription)) error {
	sub, err := s.GetByConversationID(ctx, conversationID)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(sub.ID)
	defer unlock()

	sub, err = s.GetByID(ctx, sub.ID)
	if err != nil {
		return err
	}

	apply(sub)
	return s.updateState(ctx, sub)
}

func (s *SubscriptionService) gatewayAction(ctx context.Context, ownerID, name string, action func(context.Context, *model.Subscription) (string, error)) (bool, error) {
	sub, err := s.GetByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return false, err
	}

	unlock := s.locks.lock(sub.ID)
	defer unlock()

	sub, err = s.GetByID(ctx, sub.ID)
	if err != nil {
		return false, err
	}

	if _, err := action(ctx, sub); err != nil {
		if _, ok := iyzico.AsAPIError(err); ok {
			return false, nil
		}
		return false, err
	}

	sub.IyzicoStatus = model.StatusActive
	if err := s.updateState(ctx, sub); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SubscriptionService) updateState(ctx context.Context, sub *model.Subscription) error {
	_, err := s.db.Exec(ctx,
		`UPDATE subscriptions
		 SET iyzico_plan = $1, iyzico_status = $2, trial_ends_at = $3, ends_at = $4, updated_at = now()
		 WHERE id = $5`,
		sub.IyzicoPlan, sub.IyzicoStatus, sub.TrialEndsAt, sub.EndsAt, sub.ID,
	)
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", sub.ID, err)
	}
	return nil
}

func (s *SubscriptionService) get(ctx context.Context, query string, args ...any) (*model.Subscription, error) {
	var sub model.Subscription
	err := scanSubscription(s.db.QueryRow(ctx, query, args...), &sub)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

func scanSubscription(row pgx.Row, sub *model.Subscription) error {
	return row.Scan(
		&sub.ID, &sub.OwnerID, &sub.Name, &sub.ConversationID, &sub.IyzicoID, &sub.IyzicoPlan,
		&sub.IyzicoStatus, &sub.TrialEndsAt, &sub.EndsAt, &sub.CreatedAt, &sub.UpdatedAt,
	)
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
