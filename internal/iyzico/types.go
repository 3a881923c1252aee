package iyzico

import "encoding/json"

// envelope is the common response wrapper on every gateway endpoint.
type envelope struct {
	Status       string          `json:"status"`
	ErrorCode    string          `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
	SystemTime   int64           `json:"systemTime"`
	Data         json.RawMessage `json:"data"`
}

// Address is a billing or shipping address attached to a customer.
type Address struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode,omitempty"`
}

// Customer identifies the billable party on subscription creation.
type Customer struct {
	Name            string  `json:"name"`
	Surname         string  `json:"surname"`
	GSMNumber       string  `json:"gsmNumber"`
	Email           string  `json:"email"`
	IdentityNumber  string  `json:"identityNumber"`
	BillingAddress  Address `json:"billingAddress"`
	ShippingAddress Address `json:"shippingAddress"`
}

// PaymentCard carries the card details for the initial subscription charge.
type PaymentCard struct {
	CardHolderName       string `json:"cardHolderName"`
	CardNumber           string `json:"cardNumber"`
	ExpireMonth          string `json:"expireMonth"`
	ExpireYear           string `json:"expireYear"`
	CVC                  string `json:"cvc"`
	RegisterConsumerCard bool   `json:"registerConsumerCard"`
}

type CreateProductRequest struct {
	Locale         string `json:"locale,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
}

type Product struct {
	ReferenceCode string `json:"referenceCode"`
	Name          string `json:"name"`
	Status        string `json:"status"`
}

type CreatePricingPlanRequest struct {
	Locale                 string `json:"locale,omitempty"`
	ConversationID         string `json:"conversationId,omitempty"`
	ProductReferenceCode   string `json:"productReferenceCode"`
	Name                   string `json:"name"`
	Price                  string `json:"price"`
	CurrencyCode           string `json:"currencyCode"`
	PaymentInterval        string `json:"paymentInterval"`
	PaymentIntervalCount   int    `json:"paymentIntervalCount"`
	TrialPeriodDays        int    `json:"trialPeriodDays,omitempty"`
	PlanPaymentType        string `json:"planPaymentType"`
	RecurrenceCount        int    `json:"recurrenceCount,omitempty"`
}

type PricingPlan struct {
	ReferenceCode        string `json:"referenceCode"`
	ProductReferenceCode string `json:"productReferenceCode"`
	Name                 string `json:"name"`
	Price                string `json:"price"`
	Status               string `json:"status"`
}

type CreateSubscriptionRequest struct {
	Locale                   string      `json:"locale,omitempty"`
	ConversationID           string      `json:"conversationId,omitempty"`
	PricingPlanReferenceCode string      `json:"pricingPlanReferenceCode"`
	SubscriptionInitialStatus string     `json:"subscriptionInitialStatus,omitempty"`
	Customer                 Customer    `json:"customer"`
	PaymentCard              PaymentCard `json:"paymentCard"`
}

type Subscription struct {
	ReferenceCode            string `json:"referenceCode"`
	ParentReferenceCode      string `json:"parentReferenceCode"`
	PricingPlanReferenceCode string `json:"pricingPlanReferenceCode"`
	CustomerReferenceCode    string `json:"customerReferenceCode"`
	SubscriptionStatus       string `json:"subscriptionStatus"`
	TrialDays                int    `json:"trialDays"`
	TrialStartDate           int64  `json:"trialStartDate"`
	TrialEndDate             int64  `json:"trialEndDate"`
	CreatedDate              int64  `json:"createdDate"`
	StartDate                int64  `json:"startDate"`
}

// Order is one billing period entry on the subscription detail. StartPeriod
// is the next billing period start as epoch milliseconds; the gateway
// discards it once the subscription is canceled.
type Order struct {
	ReferenceCode string `json:"referenceCode"`
	Price         string `json:"price"`
	StartPeriod   int64  `json:"startPeriod"`
	EndPeriod     int64  `json:"endPeriod"`
	OrderStatus   string `json:"orderStatus"`
}

type SubscriptionDetail struct {
	ReferenceCode            string  `json:"referenceCode"`
	PricingPlanReferenceCode string  `json:"pricingPlanReferenceCode"`
	SubscriptionStatus       string  `json:"subscriptionStatus"`
	TrialDays                int     `json:"trialDays"`
	Orders                   []Order `json:"orders"`
}

type UpgradeRequest struct {
	Locale                      string `json:"locale,omitempty"`
	ConversationID              string `json:"conversationId,omitempty"`
	NewPricingPlanReferenceCode string `json:"newPricingPlanReferenceCode"`
	ResetRecurrenceCount        bool   `json:"resetRecurrenceCount"`
	UseTrial                    bool   `json:"useTrial"`
	UpgradePeriod               string `json:"upgradePeriod"`
}

type SearchRequest struct {
	SubscriptionReferenceCode string `json:"subscriptionReferenceCode,omitempty"`
	PricingPlanReferenceCode  string `json:"pricingPlanReferenceCode,omitempty"`
	CustomerReferenceCode     string `json:"customerReferenceCode,omitempty"`
	ParentReferenceCode       string `json:"parentReferenceCode,omitempty"`
	SubscriptionStatus        string `json:"subscriptionStatus,omitempty"`
	StartDate                 string `json:"startDate,omitempty"`
	EndDate                   string `json:"endDate,omitempty"`
	Page                      int    `json:"page,omitempty"`
	Count                     int    `json:"count,omitempty"`
}

type SearchResult struct {
	TotalCount  int64          `json:"totalCount"`
	CurrentPage int            `json:"currentPage"`
	PageCount   int            `json:"pageCount"`
	Items       []Subscription `json:"items"`
}
