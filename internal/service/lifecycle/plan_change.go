package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"service-admin/internal/audit"
	"service-admin/internal/billing"
	"service-admin/internal/domain/payment"
	"service-admin/internal/domain/plan"
	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

// Upgrade moves the subscription to a higher plan. In immediate mode the
// price difference is charged (prorated over the unused share of the current
// period when requested) and the new plan applies now. Otherwise the new
// plan code is parked with auto_upgrade and applied at the next renewal.
func (s *Service) Upgrade(ctx context.Context, id int64, req *subscription.PlanChangeRequest, adminID int64) (*subscription.PlanChangeResult, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := s.subs.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != subscription.StatusActive && sub.Status != subscription.StatusTrial {
		return nil, xerrors.ErrTransitionNotAllowed
	}

	newPlan, cycle, newPrice, err := s.resolveTargetPlan(ctx, sub, req)
	if err != nil {
		return nil, err
	}
	if !newPlan.UpgradeAllowedFrom(sub.PlanCode) {
		return nil, xerrors.ErrPlanChangeNotAllowed
	}

	oldPlanCode := sub.PlanCode
	oldPrice := sub.PlanPrice
	statusBefore := sub.Status
	immediate := req.Immediate || newPlan.ImmediateUpgrade

	charge := 0.0
	var paymentID *int64
	now := time.Now()

	if immediate {
		charge = newPrice - oldPrice
		if charge < 0 {
			charge = 0
		}
		if charge > 0 && req.Prorate {
			if totalDays, derr := billing.Days(sub.BillingCycle); derr == nil {
				remaining := billing.RemainingDays(now, sub.ExpiresAt)
				charge = billing.Prorate(charge, remaining, totalDays)
			}
		}

		if charge > 0 {
			pay := &payment.Payment{
				SubscriptionID:     sub.ID,
				UserUUID:           sub.UserUUID,
				ServiceID:          sub.ServiceID,
				OrderID:            orderRef(orderPrefixUpgrade),
				Amount:             charge,
				FinalAmount:        charge,
				Currency:           currency,
				PaymentMethod:      paymentMethodOrDefault(req.PaymentMethod),
				PaymentProvider:    "manual",
				Status:             payment.StatusCompleted,
				PaymentType:        payment.TypeUpgrade,
				BillingCycle:       cycle,
				BillingPeriodStart: now,
				BillingPeriodEnd:   sub.ExpiresAt,
				PaidAt:             sql.NullTime{Time: now, Valid: true},
			}
			if err := s.payments.CreateWithTx(ctx, tx, pay); err != nil {
				return nil, err
			}
			paymentID = &pay.ID
			sub.TotalPaid += charge
		}

		s.applyPlanSnapshot(sub, newPlan, cycle, newPrice)
		sub.Status = subscription.StatusActive
		sub.AutoUpgrade = false
		sub.PendingPlanCode = sql.NullString{}
	} else {
		sub.AutoUpgrade = true
		sub.PendingPlanCode = sql.NullString{String: newPlan.PlanCode, Valid: true}
	}
	if req.AdminNotes != "" {
		sub.AdminNotes = sql.NullString{String: req.AdminNotes, Valid: true}
	}

	if err := s.subs.UpdateWithTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Upgraded from %s to %s", oldPlanCode, newPlan.PlanCode)
	if !immediate {
		description = fmt.Sprintf("Upgrade from %s to %s scheduled for next renewal", oldPlanCode, newPlan.PlanCode)
	}
	err = s.recorder.Record(ctx, tx, audit.Event{
		SubscriptionID: sub.ID,
		UserUUID:       sub.UserUUID,
		ServiceID:      sub.ServiceID,
		Action:         subscription.ActionUpgrade,
		Title:          "Plan upgraded",
		Description:    description,
		StatusBefore:   string(statusBefore),
		StatusAfter:    string(sub.Status),
		PlanBefore:     oldPlanCode,
		PlanAfter:      newPlan.PlanCode,
		Amount:         charge,
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("subscription upgraded",
		zap.Int64("subscription_id", sub.ID),
		zap.String("old_plan", oldPlanCode),
		zap.String("new_plan", newPlan.PlanCode),
		zap.Bool("immediate", immediate),
		zap.Float64("charge", charge),
	)

	return &subscription.PlanChangeResult{
		SubscriptionID: sub.ID,
		OldPlan:        oldPlanCode,
		NewPlan:        newPlan.PlanCode,
		ChargeAmount:   charge,
		PaymentID:      paymentID,
		Immediate:      immediate,
	}, nil
}

// Downgrade moves the subscription to a lower plan. Unless the change is
// immediate, the new plan code is parked and applied when the current period
// ends. An immediate downgrade may carry a partial refund.
func (s *Service) Downgrade(ctx context.Context, id int64, req *subscription.PlanChangeRequest, adminID int64) (*subscription.PlanChangeResult, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := s.subs.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != subscription.StatusActive {
		return nil, xerrors.ErrTransitionNotAllowed
	}

	newPlan, cycle, newPrice, err := s.resolveTargetPlan(ctx, sub, req)
	if err != nil {
		return nil, err
	}
	if !newPlan.DowngradeAllowedFrom(sub.PlanCode) {
		return nil, xerrors.ErrPlanChangeNotAllowed
	}

	oldPlanCode := sub.PlanCode
	immediate := req.Immediate || newPlan.ImmediateDowngrade

	refund := 0.0
	if immediate {
		amount := req.RefundAmount
		if amount > 0 {
			if amount > sub.RefundableAmount() {
				return nil, xerrors.ErrRefundExceedsBalance
			}
		} else {
			amount = s.downgradeRefund(sub, newPrice)
		}
		if amount > 0 {
			refund = amount
			sub.RefundAmount += refund
			sub.RefundedAt = sql.NullTime{Time: time.Now(), Valid: true}
		}
		s.applyPlanSnapshot(sub, newPlan, cycle, newPrice)
		sub.AutoUpgrade = false
		sub.PendingPlanCode = sql.NullString{}
	} else {
		sub.PendingPlanCode = sql.NullString{String: newPlan.PlanCode, Valid: true}
	}
	if req.AdminNotes != "" {
		sub.AdminNotes = sql.NullString{String: req.AdminNotes, Valid: true}
	}

	if err := s.subs.UpdateWithTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Downgraded from %s to %s", oldPlanCode, newPlan.PlanCode)
	if !immediate {
		description = fmt.Sprintf("Downgrade from %s to %s scheduled for period end", oldPlanCode, newPlan.PlanCode)
	}
	err = s.recorder.Record(ctx, tx, audit.Event{
		SubscriptionID: sub.ID,
		UserUUID:       sub.UserUUID,
		ServiceID:      sub.ServiceID,
		Action:         subscription.ActionDowngrade,
		Title:          "Plan downgraded",
		Description:    description,
		StatusBefore:   string(sub.Status),
		StatusAfter:    string(sub.Status),
		PlanBefore:     oldPlanCode,
		PlanAfter:      newPlan.PlanCode,
		Amount:         refund,
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("subscription downgraded",
		zap.Int64("subscription_id", sub.ID),
		zap.String("old_plan", oldPlanCode),
		zap.String("new_plan", newPlan.PlanCode),
		zap.Bool("immediate", immediate),
		zap.Float64("refund", refund),
	)

	return &subscription.PlanChangeResult{
		SubscriptionID: sub.ID,
		OldPlan:        oldPlanCode,
		NewPlan:        newPlan.PlanCode,
		RefundAmount:   refund,
		Immediate:      immediate,
	}, nil
}

// resolveTargetPlan loads the requested plan and prices it on the requested
// cycle, defaulting to the subscription's current cycle.
func (s *Service) resolveTargetPlan(ctx context.Context, sub *subscription.Subscription, req *subscription.PlanChangeRequest) (*plan.Plan, billing.Cycle, float64, error) {
	newPlan, err := s.plans.FindByCode(ctx, sub.ServiceID, req.NewPlanCode)
	if err != nil {
		return nil, "", 0, err
	}

	cycle := sub.BillingCycle
	if req.BillingCycle != "" {
		cycle = billing.Cycle(req.BillingCycle)
	}
	if !newPlan.CycleAvailable(cycle) {
		return nil, "", 0, xerrors.ErrCycleUnavailable
	}

	price, err := newPlan.PriceFor(cycle)
	if err != nil {
		return nil, "", 0, err
	}

	return newPlan, cycle, price, nil
}

// downgradeRefund returns the prorated price difference over the unused
// share of the current period, capped at the refundable balance. Lifetime
// cycles have no period length to prorate against and refund nothing.
func (s *Service) downgradeRefund(sub *subscription.Subscription, newPrice float64) float64 {
	diff := sub.PlanPrice - newPrice
	if diff <= 0 {
		return 0
	}
	totalDays, err := billing.Days(sub.BillingCycle)
	if err != nil {
		return 0
	}
	remaining := billing.RemainingDays(time.Now(), sub.ExpiresAt)
	amount := billing.Prorate(diff, remaining, totalDays)
	if ceiling := sub.RefundableAmount(); amount > ceiling {
		amount = ceiling
	}
	return amount
}

func (s *Service) applyPlanSnapshot(sub *subscription.Subscription, p *plan.Plan, cycle billing.Cycle, price float64) {
	sub.PlanID = p.ID
	sub.PlanCode = p.PlanCode
	sub.PlanName = p.PlanName
	sub.PlanPrice = price
	sub.PlanFeatures = p.Features
	sub.BillingCycle = cycle
}
