package iyzico

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a synchronous wrapper around the gateway's subscription API.
// It holds no local state beyond credentials and the HTTP client; every
// method is a single bounded round trip.
type Client struct {
	opts       Options
	httpClient *http.Client
}

func NewClient(opts Options, timeout time.Duration) *Client {
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateProduct creates a catalog product that pricing plans attach to.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	var product Product
	if err := c.do(ctx, "create product", http.MethodPost, "/v2/subscription/products", req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreatePricingPlan creates a pricing plan under an existing product.
func (c *Client) CreatePricingPlan(ctx context.Context, req CreatePricingPlanRequest) (*PricingPlan, error) {
	path := fmt.Sprintf("/v2/subscription/products/%s/pricing-plans", req.ProductReferenceCode)
	var plan PricingPlan
	if err := c.do(ctx, "create pricing plan", http.MethodPost, path, req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateSubscription starts a subscription against a pricing plan. Either a
// reference code is returned or the call had no effect.
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, "create subscription", http.MethodPost, "/v2/subscription/initialize", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Cancel stops the subscription server-side. Canceling invalidates the
// billing period information on the detail endpoint, so callers needing
// orders[0].startPeriod must fetch Detail first.
func (c *Client) Cancel(ctx context.Context, referenceCode string) error {
	path := fmt.Sprintf("/v2/subscription/subscriptions/%s/cancel", referenceCode)
	return c.do(ctx, "cancel", http.MethodPost, path, nil, nil)
}

// Retry re-attempts the last failed payment. Returns the gateway-reported
// subscription status.
func (c *Client) Retry(ctx context.Context, referenceCode string) (string, error) {
	body := map[string]string{"referenceCode": referenceCode}
	var sub Subscription
	if err := c.do(ctx, "retry", http.MethodPost, "/v2/subscription/operation/retry", body, &sub); err != nil {
		return "", err
	}
	return sub.SubscriptionStatus, nil
}

// Activate moves a PENDING subscription to ACTIVE.
func (c *Client) Activate(ctx context.Context, referenceCode string) (string, error) {
	path := fmt.Sprintf("/v2/subscription/subscriptions/%s/activate", referenceCode)
	var sub Subscription
	if err := c.do(ctx, "activate", http.MethodPost, path, nil, &sub); err != nil {
		return "", err
	}
	return sub.SubscriptionStatus, nil
}

// Upgrade swaps the subscription onto a new pricing plan. The subscription
// keeps its reference code.
func (c *Client) Upgrade(ctx context.Context, referenceCode string, req UpgradeRequest) (string, error) {
	path := fmt.Sprintf("/v2/subscription/subscriptions/%s/upgrade", referenceCode)
	var sub Subscription
	if err := c.do(ctx, "upgrade", http.MethodPost, path, req, &sub); err != nil {
		return "", err
	}
	return sub.SubscriptionStatus, nil
}

// Detail fetches the subscription state including billing period orders.
func (c *Client) Detail(ctx context.Context, referenceCode string) (*SubscriptionDetail, error) {
	path := fmt.Sprintf("/v2/subscription/subscriptions/%s", referenceCode)
	var detail SubscriptionDetail
	if err := c.do(ctx, "detail", http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Search lists subscriptions matching the given filters.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var result SearchResult
	if err := c.do(ctx, "search", http.MethodPost, "/v2/subscription/subscriptions/search", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	randKey := randomKey()
	req.Header.Set("Authorization", signRequest(c.opts, randKey, path, payload))
	req.Header.Set("x-iyzi-rnd", randKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(op, resultUnavailable).Inc()
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		gatewayRequestsTotal.WithLabelValues(op, resultUnavailable).Inc()
		return fmt.Errorf("%s: %w: status %d", op, ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		gatewayRequestsTotal.WithLabelValues(op, resultUnavailable).Inc()
		return fmt.Errorf("%s: %w: decode response: %v", op, ErrUnavailable, err)
	}

	if env.Status != "success" {
		gatewayRequestsTotal.WithLabelValues(op, resultRejected).Inc()
		return &APIError{Op: op, Code: env.ErrorCode, Message: env.ErrorMessage}
	}

	gatewayRequestsTotal.WithLabelValues(op, resultSuccess).Inc()

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", op, err)
		}
	}
	return nil
}
