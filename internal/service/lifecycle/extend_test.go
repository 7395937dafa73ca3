package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-admin/internal/billing"
	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

func TestRenew(t *testing.T) {
	ctx := context.Background()

	t.Run("anchors on current expiry, not the clock", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		expiresAt := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.ExpiresAt = expiresAt
		})

		res, err := env.svc.Renew(ctx, sub.ID, &subscription.RenewRequest{PaymentMethod: "card"}, 7)
		require.NoError(t, err)

		assert.Equal(t, expiresAt, res.OldExpiresAt)
		assert.Equal(t, expiresAt.AddDate(0, 1, 0), res.NewExpiresAt)
		assert.Equal(t, 10000.0, res.PaymentAmount)
	})

	t.Run("two renewals advance two periods", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		expiresAt := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.ExpiresAt = expiresAt
		})

		_, err := env.svc.Renew(ctx, sub.ID, &subscription.RenewRequest{PaymentMethod: "card"}, 7)
		require.NoError(t, err)
		res, err := env.svc.Renew(ctx, sub.ID, &subscription.RenewRequest{PaymentMethod: "card"}, 7)
		require.NoError(t, err)

		assert.Equal(t, expiresAt.AddDate(0, 2, 0), res.NewExpiresAt)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, 30000.0, got.TotalPaid)
	})

	t.Run("lifetime subscriptions cannot be renewed", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.BillingCycle = billing.CycleLifetime
		})

		_, err := env.svc.Renew(ctx, sub.ID, &subscription.RenewRequest{PaymentMethod: "card"}, 7)
		assert.ErrorIs(t, err, xerrors.ErrUnsupportedBillingCycle)
	})

	t.Run("cancelled subscriptions cannot be renewed", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.Status = subscription.StatusCancelled
		})

		_, err := env.svc.Renew(ctx, sub.ID, &subscription.RenewRequest{PaymentMethod: "card"}, 7)
		assert.ErrorIs(t, err, xerrors.ErrTransitionNotAllowed)
	})

	t.Run("explicit amount overrides plan price", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(nil)

		res, err := env.svc.Renew(ctx, sub.ID, &subscription.RenewRequest{
			PaymentAmount: 8000,
			PaymentMethod: "card",
		}, 7)
		require.NoError(t, err)
		assert.Equal(t, 8000.0, res.PaymentAmount)
	})
}

func TestExtend(t *testing.T) {
	ctx := context.Background()

	t.Run("extends by days", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		expiresAt := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.ExpiresAt = expiresAt
		})

		res, err := env.svc.Extend(ctx, sub.ID, &subscription.ExtendRequest{
			ExtendType: "days",
			ExtendDays: 30,
		}, 7)
		require.NoError(t, err)

		assert.Equal(t, expiresAt.AddDate(0, 0, 30), res.NewExpiresAt)
		assert.Equal(t, 30, res.ExtensionDays)
		assert.Nil(t, res.PaymentID)
	})

	t.Run("extends by whole billing cycles", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		expiresAt := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.ExpiresAt = expiresAt
		})

		res, err := env.svc.Extend(ctx, sub.ID, &subscription.ExtendRequest{
			ExtendType:   "billing_cycle",
			ExtendCycles: 3,
		}, 7)
		require.NoError(t, err)
		assert.Equal(t, expiresAt.AddDate(0, 3, 0), res.NewExpiresAt)
	})

	t.Run("custom date forces the exact expiry", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(nil)

		target := time.Now().AddDate(1, 0, 0).Truncate(time.Second)
		res, err := env.svc.Extend(ctx, sub.ID, &subscription.ExtendRequest{
			ExtendType:      "custom",
			CustomExpiresAt: &target,
		}, 7)
		require.NoError(t, err)
		assert.Equal(t, target, res.NewExpiresAt)
	})

	t.Run("custom date in the past is rejected", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(nil)

		past := time.Now().AddDate(0, 0, -1)
		_, err := env.svc.Extend(ctx, sub.ID, &subscription.ExtendRequest{
			ExtendType:      "custom",
			CustomExpiresAt: &past,
		}, 7)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("forces suspended subscription back to active", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.Status = subscription.StatusSuspended
		})

		_, err := env.svc.Extend(ctx, sub.ID, &subscription.ExtendRequest{
			ExtendType: "days",
			ExtendDays: 7,
		}, 7)
		require.NoError(t, err)

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, got.Status)
	})

	t.Run("optional charge writes an extension payment", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(nil)

		res, err := env.svc.Extend(ctx, sub.ID, &subscription.ExtendRequest{
			ExtendType:    "days",
			ExtendDays:    30,
			CreatePayment: true,
			ChargeAmount:  5000,
		}, 7)
		require.NoError(t, err)
		require.NotNil(t, res.PaymentID)

		pays, err := env.payments.ListBySubscription(ctx, sub.ID)
		require.NoError(t, err)
		require.Len(t, pays, 1)
		assert.Equal(t, "EXT-", pays[0].OrderID[:4])

		got, err := env.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, 15000.0, got.TotalPaid)
	})

	t.Run("extending a lifetime subscription by cycles fails", func(t *testing.T) {
		env := newTestEnv(basicPlan())
		sub := env.seedSubscription(func(s *subscription.Subscription) {
			s.BillingCycle = billing.CycleLifetime
		})

		_, err := env.svc.Extend(ctx, sub.ID, &subscription.ExtendRequest{
			ExtendType: "billing_cycle",
		}, 7)
		assert.ErrorIs(t, err, xerrors.ErrUnsupportedBillingCycle)
	})
}
