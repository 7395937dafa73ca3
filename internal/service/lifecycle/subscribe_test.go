package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-admin/internal/domain/payment"
	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	req := func() *subscription.SubscribeRequest {
		return &subscription.SubscribeRequest{
			UserUUID:     "user-1",
			UserEmail:    "user@example.com",
			UserName:     "User One",
			ServiceID:    10,
			PlanCode:     "basic",
			BillingCycle: "monthly",
			AutoRenewal:  true,
		}
	}

	t.Run("creates active subscription with one month period", func(t *testing.T) {
		env := newTestEnv(basicPlan())

		res, err := env.svc.Subscribe(ctx, req(), 7)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, res.Status)
		require.NotNil(t, res.PaymentID)

		sub, err := env.subs.FindByID(ctx, res.SubscriptionID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), sub.PlanID)
		assert.Zero(t, sub.TotalPaid)
		assert.True(t, sub.NextBillingAt.Valid)
		assert.WithinDuration(t, time.Now().AddDate(0, 1, 0), sub.ExpiresAt, 5*time.Second)

		assert.Equal(t, subscription.ActionSubscribe, env.recorder.lastAction())

		pays, err := env.payments.ListBySubscription(ctx, sub.ID)
		require.NoError(t, err)
		require.Len(t, pays, 1)
		assert.Equal(t, "SUB-", pays[0].OrderID[:4])
		assert.Equal(t, "KRW", pays[0].Currency)
		assert.Equal(t, payment.StatusPending, pays[0].Status)
		assert.False(t, pays[0].PaidAt.Valid)
		require.True(t, pays[0].DueDate.Valid)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), pays[0].DueDate.Time, 5*time.Second)
	})

	t.Run("free plan skips payment", func(t *testing.T) {
		p := basicPlan()
		p.MonthlyPrice = 0
		env := newTestEnv(p)

		res, err := env.svc.Subscribe(ctx, req(), 7)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, res.Status)
		assert.Nil(t, res.PaymentID)

		pays, err := env.payments.ListBySubscription(ctx, res.SubscriptionID)
		require.NoError(t, err)
		assert.Empty(t, pays)
	})

	t.Run("confirm payment credits the paid total", func(t *testing.T) {
		env := newTestEnv(basicPlan())

		res, err := env.svc.Subscribe(ctx, req(), 7)
		require.NoError(t, err)
		require.NotNil(t, res.PaymentID)

		pay, err := env.svc.ConfirmPayment(ctx, res.SubscriptionID, *res.PaymentID, &subscription.ConfirmPaymentRequest{
			TransactionID: "txn-42",
		}, 7)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusCompleted, pay.Status)
		assert.True(t, pay.PaidAt.Valid)
		assert.Equal(t, "txn-42", pay.TransactionID.String)

		sub, err := env.subs.FindByID(ctx, res.SubscriptionID)
		require.NoError(t, err)
		assert.Equal(t, 10000.0, sub.TotalPaid)

		_, err = env.svc.ConfirmPayment(ctx, res.SubscriptionID, *res.PaymentID, &subscription.ConfirmPaymentRequest{}, 7)
		assert.ErrorIs(t, err, xerrors.ErrConflict)
	})

	t.Run("trial subscription skips payment", func(t *testing.T) {
		p := basicPlan()
		p.HasTrial = true
		p.TrialPeriodDays = 14
		env := newTestEnv(p)

		r := req()
		r.UseTrial = true
		res, err := env.svc.Subscribe(ctx, r, 7)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusTrial, res.Status)
		assert.Nil(t, res.PaymentID)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 14), res.ExpiresAt, 5*time.Second)

		sub, err := env.subs.FindByID(ctx, res.SubscriptionID)
		require.NoError(t, err)
		assert.Zero(t, sub.TotalPaid)
	})

	t.Run("rejects second live subscription on same service", func(t *testing.T) {
		env := newTestEnv(basicPlan())

		_, err := env.svc.Subscribe(ctx, req(), 7)
		require.NoError(t, err)

		_, err = env.svc.Subscribe(ctx, req(), 7)
		assert.ErrorIs(t, err, xerrors.ErrDuplicateSubscription)
	})

	t.Run("rejects unavailable billing cycle", func(t *testing.T) {
		p := basicPlan()
		p.YearlyAvailable = false
		env := newTestEnv(p)

		r := req()
		r.BillingCycle = "yearly"
		_, err := env.svc.Subscribe(ctx, r, 7)
		assert.ErrorIs(t, err, xerrors.ErrCycleUnavailable)
	})

	t.Run("rejects unknown billing cycle", func(t *testing.T) {
		env := newTestEnv(basicPlan())

		r := req()
		r.BillingCycle = "weekly"
		_, err := env.svc.Subscribe(ctx, r, 7)
		assert.ErrorIs(t, err, xerrors.ErrUnsupportedBillingCycle)
	})

	t.Run("rejects unknown plan", func(t *testing.T) {
		env := newTestEnv(basicPlan())

		r := req()
		r.PlanCode = "enterprise"
		_, err := env.svc.Subscribe(ctx, r, 7)
		assert.ErrorIs(t, err, xerrors.ErrPlanNotFound)
	})

	t.Run("setup fee is charged on first payment", func(t *testing.T) {
		p := basicPlan()
		p.SetupFee = 500
		env := newTestEnv(p)

		res, err := env.svc.Subscribe(ctx, req(), 7)
		require.NoError(t, err)

		sub, err := env.subs.FindByID(ctx, res.SubscriptionID)
		require.NoError(t, err)
		assert.Zero(t, sub.TotalPaid)

		pays, err := env.payments.ListBySubscription(ctx, sub.ID)
		require.NoError(t, err)
		require.Len(t, pays, 1)
		assert.Equal(t, 10500.0, pays[0].FinalAmount)
		assert.Equal(t, 10000.0, pays[0].Amount)
	})
}
