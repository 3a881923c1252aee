package model

import "time"

// Subscription is the local view of a gateway subscription. One row exists
// per (owner_id, name) pair with live lifecycle state; rows are never
// deleted, cancellation and expiry are terminal states.
type Subscription struct {
	ID      string `json:"id" db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`
	// Name identifies which seat of subscription this is for the owner,
	// e.g. "default" or "premium".
	Name string `json:"name" db:"name"`
	// ConversationID correlates gateway requests and webhook deliveries
	// with this row.
	ConversationID string `json:"conversation_id" db:"conversation_id"`
	// IyzicoID is the gateway-assigned subscription reference code. Set
	// exactly once at creation; upgrades swap IyzicoPlan, never IyzicoID.
	IyzicoID     string     `json:"iyzico_id" db:"iyzico_id"`
	IyzicoPlan   string     `json:"iyzico_plan" db:"iyzico_plan"`
	IyzicoStatus string     `json:"iyzico_status" db:"iyzico_status"`
	TrialEndsAt  *time.Time `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	EndsAt       *time.Time `json:"ends_at,omitempty" db:"ends_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Valid reports whether the owner should retain access.
func (s *Subscription) Valid() bool {
	return s.ValidAt(time.Now().UTC())
}

func (s *Subscription) ValidAt(now time.Time) bool {
	return s.ActiveAt(now) || s.OnTrialAt(now) || s.OnGracePeriodAt(now)
}

// Active reports whether the subscription is in good standing with the
// gateway and not past a scheduled termination.
func (s *Subscription) Active() bool {
	return s.ActiveAt(time.Now().UTC())
}

func (s *Subscription) ActiveAt(now time.Time) bool {
	notEnded := s.EndsAt == nil || s.EndsAt.After(now)
	return notEnded && s.IyzicoStatus == StatusActive
}

// OnTrial reports whether the trial period is still running.
func (s *Subscription) OnTrial() bool {
	return s.OnTrialAt(time.Now().UTC())
}

func (s *Subscription) OnTrialAt(now time.Time) bool {
	return s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}

// OnGracePeriod reports whether a scheduled termination has not yet taken
// effect.
func (s *Subscription) OnGracePeriod() bool {
	return s.OnGracePeriodAt(time.Now().UTC())
}

func (s *Subscription) OnGracePeriodAt(now time.Time) bool {
	return s.EndsAt != nil && s.EndsAt.After(now)
}

// Canceled reports whether a termination is scheduled or already effective.
// A canceled subscription on grace period is still Valid.
func (s *Subscription) Canceled() bool {
	return s.EndsAt != nil
}

// Expired reports whether a scheduled termination has passed.
func (s *Subscription) Expired() bool {
	return s.ExpiredAt(time.Now().UTC())
}

func (s *Subscription) ExpiredAt(now time.Time) bool {
	return s.EndsAt != nil && !s.EndsAt.After(now)
}

// HasPlan reports whether the given pricing plan is in effect.
func (s *Subscription) HasPlan(plan string) bool {
	return s.IyzicoPlan == plan
}
