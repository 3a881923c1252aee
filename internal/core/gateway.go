package core

import (
	"context"

	"github.com/edvin/billing/internal/iyzico"
)

// Gateway is the remote payment gateway contract consumed by the services.
// *iyzico.Client satisfies this interface; tests substitute a fake.
type Gateway interface {
	CreateProduct(ctx context.Context, req iyzico.CreateProductRequest) (*iyzico.Product, error)
	CreatePricingPlan(ctx context.Context, req iyzico.CreatePricingPlanRequest) (*iyzico.PricingPlan, error)
	CreateSubscription(ctx context.Context, req iyzico.CreateSubscriptionRequest) (*iyzico.Subscription, error)
	Cancel(ctx context.Context, referenceCode string) error
	Retry(ctx context.Context, referenceCode string) (string, error)
	Activate(ctx context.Context, referenceCode string) (string, error)
	Upgrade(ctx context.Context, referenceCode string, req iyzico.UpgradeRequest) (string, error)
	Detail(ctx context.Context, referenceCode string) (*iyzico.SubscriptionDetail, error)
	Search(ctx context.Context, req iyzico.SearchRequest) (*iyzico.SearchResult, error)
}
