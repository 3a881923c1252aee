package handler

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/billing/internal/iyzico"
	"github.com/edvin/billing/internal/model"
)

// fakeDB satisfies core.DB with a queue of canned rows. Exec always reports
// one affected row unless execErr is set.
type fakeDB struct {
	rows    []scanFn
	execErr error
}

type scanFn func(dest ...any) error

func (f scanFn) Scan(dest ...any) error { return f(dest...) }

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return emptyRows{}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	if len(f.rows) == 0 {
		return scanFn(func(...any) error { return pgx.ErrNoRows })
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

// queueSub enqueues a subscription row for the next QueryRow call.
func (f *fakeDB) queueSub(sub model.Subscription) {
	f.rows = append(f.rows, func(dest ...any) error {
		*(dest[0].(*string)) = sub.ID
		*(dest[1].(*string)) = sub.OwnerID
		*(dest[2].(*string)) = sub.Name
		*(dest[3].(*string)) = sub.ConversationID
		*(dest[4].(*string)) = sub.IyzicoID
		*(dest[5].(*string)) = sub.IyzicoPlan
		*(dest[6].(*string)) = sub.IyzicoStatus
		*(dest[7].(**time.Time)) = sub.TrialEndsAt
		*(dest[8].(**time.Time)) = sub.EndsAt
		*(dest[9].(*time.Time)) = sub.CreatedAt
		*(dest[10].(*time.Time)) = sub.UpdatedAt
		return nil
	})
}

type emptyRows struct{}

func (emptyRows) Next() bool                                     { return false }
func (emptyRows) Scan(...any) error                              { return nil }
func (emptyRows) Err() error                                     { return nil }
func (emptyRows) Close()                                         {}
func (emptyRows) CommandTag() pgconn.CommandTag                  { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription   { return nil }
func (emptyRows) RawValues() [][]byte                            { return nil }
func (emptyRows) Values() ([]any, error)                         { return nil, nil }
func (emptyRows) Conn() *pgx.Conn                                { return nil }

// fakeGateway returns canned gateway responses and records the pricing plan
// request for assertions.
type fakeGateway struct {
	subscription    *iyzico.Subscription
	subscriptionErr error
	retryErr        error
	detail          *iyzico.SubscriptionDetail
	cancelErr       error
	planReq         iyzico.CreatePricingPlanRequest
}

func (f *fakeGateway) CreateProduct(context.Context, iyzico.CreateProductRequest) (*iyzico.Product, error) {
	return &iyzico.Product{ReferenceCode: "prod-1"}, nil
}

func (f *fakeGateway) CreatePricingPlan(_ context.Context, req iyzico.CreatePricingPlanRequest) (*iyzico.PricingPlan, error) {
	f.planReq = req
	return &iyzico.PricingPlan{ReferenceCode: "plan-1"}, nil
}

func (f *fakeGateway) CreateSubscription(context.Context, iyzico.CreateSubscriptionRequest) (*iyzico.Subscription, error) {
	return f.subscription, f.subscriptionErr
}

func (f *fakeGateway) Cancel(context.Context, string) error { return f.cancelErr }

func (f *fakeGateway) Retry(context.Context, string) (string, error) {
	return model.StatusActive, f.retryErr
}

func (f *fakeGateway) Activate(context.Context, string) (string, error) {
	return model.StatusActive, nil
}

func (f *fakeGateway) Upgrade(context.Context, string, iyzico.UpgradeRequest) (string, error) {
	return model.StatusUpgraded, nil
}

func (f *fakeGateway) Detail(context.Context, string) (*iyzico.SubscriptionDetail, error) {
	return f.detail, nil
}

func (f *fakeGateway) Search(context.Context, iyzico.SearchRequest) (*iyzico.SearchResult, error) {
	return &iyzico.SearchResult{}, nil
}
