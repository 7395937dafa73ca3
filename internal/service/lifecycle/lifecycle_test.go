package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-admin/internal/audit"
	"service-admin/internal/billing"
	"service-admin/internal/domain/payment"
	"service-admin/internal/domain/plan"
	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

// stubTx satisfies pgx.Tx for the in-memory stores; only Commit and Rollback
// are ever called on it.
type stubTx struct {
	pgx.Tx
}

func (stubTx) Commit(ctx context.Context) error   { return nil }
func (stubTx) Rollback(ctx context.Context) error { return nil }

type fakeDB struct{}

func (fakeDB) BeginTx(ctx context.Context) (pgx.Tx, error) { return stubTx{}, nil }

type fakeSubStore struct {
	subs   map[int64]*subscription.Subscription
	nextID int64
}

func newFakeSubStore() *fakeSubStore {
	return &fakeSubStore{subs: make(map[int64]*subscription.Subscription), nextID: 1}
}

func (f *fakeSubStore) CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	sub.ID = f.nextID
	f.nextID++
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeSubStore) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubStore) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*subscription.Subscription, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeSubStore) FindActiveByUserAndService(ctx context.Context, userUUID string, serviceID int64) (*subscription.Subscription, error) {
	for _, sub := range f.subs {
		if sub.UserUUID == userUUID && sub.ServiceID == serviceID &&
			sub.Status != subscription.StatusCancelled && sub.Status != subscription.StatusExpired {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeSubStore) UpdateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	if _, ok := f.subs[sub.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeSubStore) List(ctx context.Context, filters subscription.ListFilters) (*subscription.ListResponse, error) {
	resp := &subscription.ListResponse{Page: 1, PageSize: 20}
	for _, sub := range f.subs {
		if filters.Status != nil && sub.Status != *filters.Status {
			continue
		}
		resp.Subscriptions = append(resp.Subscriptions, *sub)
	}
	resp.Total = int64(len(resp.Subscriptions))
	return resp, nil
}

type fakePlanStore struct {
	plans []*plan.Plan
}

func (f *fakePlanStore) FindByID(ctx context.Context, id int64) (*plan.Plan, error) {
	for _, p := range f.plans {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, xerrors.ErrPlanNotFound
}

func (f *fakePlanStore) FindByCode(ctx context.Context, serviceID int64, planCode string) (*plan.Plan, error) {
	for _, p := range f.plans {
		if p.ServiceID == serviceID && p.PlanCode == planCode && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, xerrors.ErrPlanNotFound
}

type fakePaymentStore struct {
	payments map[int64]*payment.Payment
	nextID   int64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[int64]*payment.Payment), nextID: 1}
}

func (f *fakePaymentStore) CreateWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakePaymentStore) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*payment.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) ListBySubscription(ctx context.Context, subscriptionID int64) ([]payment.Payment, error) {
	out := []payment.Payment{}
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.payments[id]; ok && p.SubscriptionID == subscriptionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) ListCompletedBySubscriptionWithTx(ctx context.Context, tx pgx.Tx, subscriptionID int64) ([]payment.Payment, error) {
	out := []payment.Payment{}
	for id := int64(1); id < f.nextID; id++ {
		p, ok := f.payments[id]
		if !ok || p.SubscriptionID != subscriptionID {
			continue
		}
		if p.Status == payment.StatusCompleted || p.Status == payment.StatusRefunded {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) MarkCompletedWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	if _, ok := f.payments[p.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakePaymentStore) UpdateRefundWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	if _, ok := f.payments[p.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

type fakeLogStore struct{}

func (fakeLogStore) List(ctx context.Context, filters subscription.LogListFilters) (*subscription.LogListResponse, error) {
	return &subscription.LogListResponse{}, nil
}

type fakeRecorder struct {
	events []audit.Event
}

func (r *fakeRecorder) Record(ctx context.Context, tx pgx.Tx, e audit.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeRecorder) lastAction() subscription.Action {
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1].Action
}

type testEnv struct {
	svc      *Service
	subs     *fakeSubStore
	plans    *fakePlanStore
	payments *fakePaymentStore
	recorder *fakeRecorder
}

func newTestEnv(plans ...*plan.Plan) *testEnv {
	env := &testEnv{
		subs:     newFakeSubStore(),
		plans:    &fakePlanStore{plans: plans},
		payments: newFakePaymentStore(),
		recorder: &fakeRecorder{},
	}
	env.svc = NewService(env.subs, env.plans, env.payments, fakeLogStore{}, fakeDB{}, env.recorder, zap.NewNop())
	return env
}

func basicPlan() *plan.Plan {
	return &plan.Plan{
		ID:                 1,
		ServiceID:          10,
		PlanCode:           "basic",
		PlanName:           "Basic",
		MonthlyPrice:       10000,
		QuarterlyPrice:     27000,
		YearlyPrice:        100000,
		MonthlyAvailable:   true,
		QuarterlyAvailable: true,
		YearlyAvailable:    true,
		IsActive:           true,
	}
}

func premiumPlan() *plan.Plan {
	return &plan.Plan{
		ID:                 2,
		ServiceID:          10,
		PlanCode:           "premium",
		PlanName:           "Premium",
		MonthlyPrice:       30000,
		QuarterlyPrice:     81000,
		YearlyPrice:        300000,
		MonthlyAvailable:   true,
		QuarterlyAvailable: true,
		YearlyAvailable:    true,
		UpgradePaths:       []string{"basic"},
		ImmediateUpgrade:   true,
		IsActive:           true,
	}
}

// seedSubscription plants an active monthly subscription directly in the
// store, bypassing Subscribe.
func (env *testEnv) seedSubscription(mutate func(*subscription.Subscription)) *subscription.Subscription {
	now := time.Now()
	sub := &subscription.Subscription{
		UserUUID:     "user-1",
		UserEmail:    "user@example.com",
		UserName:     "User One",
		ServiceID:    10,
		PlanID:       1,
		PlanCode:     "basic",
		PlanName:     "Basic",
		PlanPrice:    10000,
		BillingCycle: billing.CycleMonthly,
		Status:       subscription.StatusActive,
		StartedAt:    now,
		ExpiresAt:    now.AddDate(0, 1, 0),
		TotalPaid:    10000,
	}
	if mutate != nil {
		mutate(sub)
	}
	if err := env.subs.CreateWithTx(context.Background(), stubTx{}, sub); err != nil {
		panic(err)
	}
	return sub
}

// seedPayment plants a completed payment row.
func (env *testEnv) seedPayment(subID int64, amount float64, mutate func(*payment.Payment)) *payment.Payment {
	now := time.Now()
	p := &payment.Payment{
		SubscriptionID:     subID,
		UserUUID:           "user-1",
		ServiceID:          10,
		OrderID:            orderRef(orderPrefixSubscribe),
		Amount:             amount,
		FinalAmount:        amount,
		Currency:           currency,
		PaymentMethod:      "card",
		PaymentProvider:    "manual",
		Status:             payment.StatusCompleted,
		PaymentType:        payment.TypeSubscription,
		BillingCycle:       billing.CycleMonthly,
		BillingPeriodStart: now,
		BillingPeriodEnd:   now.AddDate(0, 1, 0),
	}
	if mutate != nil {
		mutate(p)
	}
	if err := env.payments.CreateWithTx(context.Background(), stubTx{}, p); err != nil {
		panic(err)
	}
	return p
}

func TestOrderRefPrefixes(t *testing.T) {
	ref := orderRef(orderPrefixRenewal)
	if len(ref) <= len(orderPrefixRenewal) {
		t.Fatalf("order ref too short: %q", ref)
	}
	if ref[:4] != orderPrefixRenewal {
		t.Fatalf("expected REN- prefix, got %q", ref)
	}
}
