package model

// Gateway-reported subscription status values.
const (
	StatusPending  = "PENDING"
	StatusActive   = "ACTIVE"
	StatusUnpaid   = "UNPAID"
	StatusUpgraded = "UPGRADED"
	StatusCanceled = "CANCELED"
	StatusExpired  = "EXPIRED"
)

// Payment interval values accepted by the gateway for pricing plans.
const (
	IntervalDaily   = "DAILY"
	IntervalWeekly  = "WEEKLY"
	IntervalMonthly = "MONTHLY"
	IntervalYearly  = "YEARLY"
)

// Upgrade period values: apply the new plan immediately or at the next
// billing period.
const (
	UpgradeNow        = "NOW"
	UpgradeNextPeriod = "NEXT_PERIOD"
)
