package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/billing/internal/iyzico"
	"github.com/edvin/billing/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

// noRow scans as pgx.ErrNoRows.
func noRow() *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

// subRow scans the given subscription in column order.
func subRow(sub model.Subscription) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
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
	}}
}

// ---------- Mock Rows ----------

// mockRows implements pgx.Rows for testing.
// It iterates through a list of scan functions, one per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                    { return m.err }
func (m *mockRows) Close()                                        {}
func (m *mockRows) CommandTag() pgconn.CommandTag                 { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription  { return nil }
func (m *mockRows) RawValues() [][]byte                           { return nil }
func (m *mockRows) Values() ([]any, error)                        { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                               { return nil }

// ---------- Fake gateway ----------

// fakeGateway records the order of gateway calls and returns canned results.
type fakeGateway struct {
	calls []string

	product    *iyzico.Product
	productErr error

	plan    *iyzico.PricingPlan
	planErr error

	subscription    *iyzico.Subscription
	subscriptionErr error

	cancelErr error

	retryStatus string
	retryErr    error

	activateStatus string
	activateErr    error

	upgradeStatus string
	upgradeErr    error

	detail    *iyzico.SubscriptionDetail
	detailErr error

	searchResult *iyzico.SearchResult
	searchErr    error
}

func (f *fakeGateway) CreateProduct(_ context.Context, _ iyzico.CreateProductRequest) (*iyzico.Product, error) {
	f.calls = append(f.calls, "create_product")
	return f.product, f.productErr
}

func (f *fakeGateway) CreatePricingPlan(_ context.Context, _ iyzico.CreatePricingPlanRequest) (*iyzico.PricingPlan, error) {
	f.calls = append(f.calls, "create_plan")
	return f.plan, f.planErr
}

func (f *fakeGateway) CreateSubscription(_ context.Context, _ iyzico.CreateSubscriptionRequest) (*iyzico.Subscription, error) {
	f.calls = append(f.calls, "create_subscription")
	return f.subscription, f.subscriptionErr
}

func (f *fakeGateway) Cancel(_ context.Context, _ string) error {
	f.calls = append(f.calls, "cancel")
	return f.cancelErr
}

func (f *fakeGateway) Retry(_ context.Context, _ string) (string, error) {
	f.calls = append(f.calls, "retry")
	return f.retryStatus, f.retryErr
}

func (f *fakeGateway) Activate(_ context.Context, _ string) (string, error) {
	f.calls = append(f.calls, "activate")
	return f.activateStatus, f.activateErr
}

func (f *fakeGateway) Upgrade(_ context.Context, _ string, _ iyzico.UpgradeRequest) (string, error) {
	f.calls = append(f.calls, "upgrade")
	return f.upgradeStatus, f.upgradeErr
}

func (f *fakeGateway) Detail(_ context.Context, _ string) (*iyzico.SubscriptionDetail, error) {
	f.calls = append(f.calls, "detail")
	return f.detail, f.detailErr
}

func (f *fakeGateway) Search(_ context.Context, _ iyzico.SearchRequest) (*iyzico.SearchResult, error) {
	f.calls = append(f.calls, "search")
	return f.searchResult, f.searchErr
}
