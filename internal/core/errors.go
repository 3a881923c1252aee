package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no subscription matches the lookup.
	ErrNotFound = errors.New("subscription not found")

	// ErrAlreadySubscribed is returned when an owner already holds a valid
	// subscription under the requested name. Raised before any gateway call.
	ErrAlreadySubscribed = errors.New("already subscribed")

	// ErrInvalidState is returned when an action is requested against a
	// subscription whose state does not permit it, e.g. resuming a
	// subscription that was never canceled.
	ErrInvalidState = errors.New("invalid subscription state")

	// ErrPlanReferenceRequired is returned when direct provisioning is
	// requested without a pricing plan reference.
	ErrPlanReferenceRequired = errors.New("pricing plan reference required for direct create")
)

// Provisioning step names reported by ProvisioningError.
const (
	StepProduct      = "product"
	StepPricingPlan  = "plan"
	StepSubscription = "subscription"
)

// ProvisioningError reports which provisioning step failed and carries the
// remote references already created. Completed steps are not rolled back;
// callers may reuse the partial references on retry.
type ProvisioningError struct {
	Step       string
	ProductRef string
	PlanRef    string
	Err        error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning step %s failed: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
