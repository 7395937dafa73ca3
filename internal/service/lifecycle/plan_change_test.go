package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

func TestUpgrade(t *testing.T) {
	ctx := context.Background()

	t.Run("charges full price difference without proration", func(t *testing.T) {
		env := newTestEnv(basicPlan(), premiumPlan())
		sub := env.seedSubscription(nil)

		res, err := env.svc.Upgrade(ctx, sub.ID, &subscription.PlanChangeRequest{
			NewPlanCode: "premium",
		}, 7)
		require.NoError(t, err)

		assert.Equal(t, "basic", res.OldPlan)
		assert.Equal(t, "premium", res.NewPlan)
		assert.Equal(t, 20000.0, res.ChargeAmount)
		assert.True(t, res.Immediate)
		require.NotNil(t, res.PaymentID)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.PlanID)
		assert.Equal(t, "premium", got.PlanCode)
		assert.Equal(t, 30000.0, got.PlanPrice)
		assert.Equal(t, 30000.0, got.TotalPaid)
	})

	t.Run("prorates the difference over remaining days", func(t *testing.T) {
		env := newTestEnv(basicPlan(), premiumPlan())
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			// 15 of 30 days remaining: charge half the 20000 difference.
			s.ExpiresAt = time.Now().AddDate(0, 0, 15).Add(time.Hour)
		})

		res, err := env.svc.Upgrade(ctx, sub.ID, &subscription.PlanChangeRequest{
			NewPlanCode: "premium",
			Prorate:     true,
		}, 7)
		require.NoError(t, err)
		assert.InDelta(t, 10000.0, res.ChargeAmount, 0.01)
	})

	t.Run("deferred upgrade parks the plan for the next renewal", func(t *testing.T) {
		target := premiumPlan()
		target.ImmediateUpgrade = false
		env := newTestEnv(basicPlan(), target)
		sub := env.seedSubscription(nil)

		res, err := env.svc.Upgrade(ctx, sub.ID, &subscription.PlanChangeRequest{
			NewPlanCode: "premium",
		}, 7)
		require.NoError(t, err)

		assert.False(t, res.Immediate)
		assert.Zero(t, res.ChargeAmount)
		assert.Nil(t, res.PaymentID)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "basic", got.PlanCode)
		assert.Equal(t, 10000.0, got.PlanPrice)
		assert.True(t, got.AutoUpgrade)
		require.True(t, got.PendingPlanCode.Valid)
		assert.Equal(t, "premium", got.PendingPlanCode.String)
	})

	t.Run("renewal applies the parked upgrade at the new price", func(t *testing.T) {
		target := premiumPlan()
		target.ImmediateUpgrade = false
		env := newTestEnv(basicPlan(), target)
		sub := env.seedSubscription(nil)

		_, err := env.svc.Upgrade(ctx, sub.ID, &subscription.PlanChangeRequest{
			NewPlanCode: "premium",
		}, 7)
		require.NoError(t, err)

		res, err := env.svc.Renew(ctx, sub.ID, &subscription.RenewRequest{}, 7)
		require.NoError(t, err)
		assert.Equal(t, 30000.0, res.PaymentAmount)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "premium", got.PlanCode)
		assert.Equal(t, int64(2), got.PlanID)
		assert.Equal(t, 30000.0, got.PlanPrice)
		assert.False(t, got.AutoUpgrade)
		assert.False(t, got.PendingPlanCode.Valid)
	})

	t.Run("rejects upgrade outside the allowed paths", func(t *testing.T) {
		target := premiumPlan()
		target.UpgradePaths = []string{"pro"}
		env := newTestEnv(basicPlan(), target)
		sub := env.seedSubscription(nil)

		_, err := env.svc.Upgrade(ctx, sub.ID, &subscription.PlanChangeRequest{
			NewPlanCode: "premium",
		}, 7)
		assert.ErrorIs(t, err, xerrors.ErrPlanChangeNotAllowed)
	})

	t.Run("rejects upgrade of cancelled subscription", func(t *testing.T) {
		env := newTestEnv(basicPlan(), premiumPlan())
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.Status = subscription.StatusCancelled
		})

		_, err := env.svc.Upgrade(ctx, sub.ID, &subscription.PlanChangeRequest{
			NewPlanCode: "premium",
		}, 7)
		assert.ErrorIs(t, err, xerrors.ErrTransitionNotAllowed)
	})
}

func TestDowngrade(t *testing.T) {
	ctx := context.Background()

	downgradeTarget := func() *subscription.PlanChangeRequest {
		return &subscription.PlanChangeRequest{NewPlanCode: "basic"}
	}

	seedPremium := func(env *testEnv) *subscription.Subscription {
		return env.seedSubscription(func(s *subscription.Subscription) {
			s.PlanID = 2
			s.PlanCode = "premium"
			s.PlanName = "Premium"
			s.PlanPrice = 30000
			s.TotalPaid = 30000
		})
	}

	t.Run("scheduled downgrade parks the pending plan code", func(t *testing.T) {
		basic := basicPlan()
		basic.DowngradePaths = []string{"premium"}
		env := newTestEnv(basic, premiumPlan())
		sub := seedPremium(env)

		res, err := env.svc.Downgrade(ctx, sub.ID, downgradeTarget(), 7)
		require.NoError(t, err)
		assert.False(t, res.Immediate)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "premium", got.PlanCode)
		require.True(t, got.PendingPlanCode.Valid)
		assert.Equal(t, "basic", got.PendingPlanCode.String)
	})

	t.Run("immediate downgrade swaps the plan and can refund", func(t *testing.T) {
		basic := basicPlan()
		basic.DowngradePaths = []string{"premium"}
		env := newTestEnv(basic, premiumPlan())
		sub := seedPremium(env)

		req := downgradeTarget()
		req.Immediate = true
		req.RefundAmount = 5000
		res, err := env.svc.Downgrade(ctx, sub.ID, req, 7)
		require.NoError(t, err)

		assert.True(t, res.Immediate)
		assert.Equal(t, 5000.0, res.RefundAmount)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "basic", got.PlanCode)
		assert.Equal(t, 5000.0, got.RefundAmount)
		assert.False(t, got.PendingPlanCode.Valid)
	})

	t.Run("immediate downgrade defaults to a prorated refund", func(t *testing.T) {
		basic := basicPlan()
		basic.DowngradePaths = []string{"premium"}
		env := newTestEnv(basic, premiumPlan())
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.PlanID = 2
			s.PlanCode = "premium"
			s.PlanName = "Premium"
			s.PlanPrice = 30000
			s.TotalPaid = 30000
			// 15 of 30 days remaining: refund half the 20000 difference.
			s.ExpiresAt = time.Now().AddDate(0, 0, 15).Add(time.Hour)
		})

		req := downgradeTarget()
		req.Immediate = true
		res, err := env.svc.Downgrade(ctx, sub.ID, req, 7)
		require.NoError(t, err)

		assert.InDelta(t, 10000.0, res.RefundAmount, 0.01)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "basic", got.PlanCode)
		assert.InDelta(t, 10000.0, got.RefundAmount, 0.01)
		assert.True(t, got.RefundedAt.Valid)
	})

	t.Run("refund above the refundable balance is rejected", func(t *testing.T) {
		basic := basicPlan()
		basic.DowngradePaths = []string{"premium"}
		env := newTestEnv(basic, premiumPlan())
		sub := seedPremium(env)

		req := downgradeTarget()
		req.Immediate = true
		req.RefundAmount = 40000
		_, err := env.svc.Downgrade(ctx, sub.ID, req, 7)
		assert.ErrorIs(t, err, xerrors.ErrRefundExceedsBalance)
	})

	t.Run("rejects downgrade outside the allowed paths", func(t *testing.T) {
		env := newTestEnv(basicPlan(), premiumPlan())
		sub := seedPremium(env)

		_, err := env.svc.Downgrade(ctx, sub.ID, downgradeTarget(), 7)
		assert.ErrorIs(t, err, xerrors.ErrPlanChangeNotAllowed)
	})
}
