package request

// BillingAddress is the address block on subscription creation.
type BillingAddress struct {
	ContactName string `json:"contact_name" validate:"required"`
	City        string `json:"city" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Address     string `json:"address" validate:"required"`
	ZipCode     string `json:"zip_code,omitempty"`
}

// SubscriptionCustomer identifies the billable party.
type SubscriptionCustomer struct {
	Name           string         `json:"name" validate:"required"`
	Surname        string         `json:"surname" validate:"required"`
	Email          string         `json:"email" validate:"required,email"`
	GSMNumber      string         `json:"gsm_number,omitempty"`
	IdentityNumber string         `json:"identity_number,omitempty"`
	Address        BillingAddress `json:"address" validate:"required"`
}

// SubscriptionCard carries the card for the initial charge. It is forwarded
// to the gateway and never persisted.
type SubscriptionCard struct {
	HolderName  string `json:"holder_name" validate:"required"`
	Number      string `json:"number" validate:"required,credit_card"`
	ExpireMonth string `json:"expire_month" validate:"required,len=2"`
	ExpireYear  string `json:"expire_year" validate:"required,len=4"`
	CVC         string `json:"cvc" validate:"required,min=3,max=4"`
}

// CreateSubscription provisions a subscription in the named seat. When
// plan_reference is set the catalog steps are skipped and the subscription is
// created directly against that plan; otherwise plan, price and currency
// describe the pricing plan to create.
type CreateSubscription struct {
	Name          string `json:"name" validate:"required,slug"`
	Plan          string `json:"plan" validate:"required_without=PlanReference"`
	PlanReference string `json:"plan_reference,omitempty"`

	Price         string `json:"price,omitempty"`
	Currency      string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Interval      string `json:"interval,omitempty" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	IntervalCount int    `json:"interval_count,omitempty" validate:"omitempty,min=1"`

	TrialDays int  `json:"trial_days,omitempty" validate:"omitempty,min=0,max=365"`
	SkipTrial bool `json:"skip_trial,omitempty"`

	Customer SubscriptionCustomer `json:"customer" validate:"required"`
	Card     SubscriptionCard     `json:"card" validate:"required"`
}

// UpgradeSubscription swaps the seat onto a new pricing plan.
type UpgradeSubscription struct {
	NewPlanReference     string `json:"new_plan_reference" validate:"required"`
	ResetRecurrenceCount bool   `json:"reset_recurrence_count,omitempty"`
	UseTrial             bool   `json:"use_trial,omitempty"`
	When                 string `json:"when,omitempty" validate:"omitempty,oneof=NOW NEXT_PERIOD"`
}
