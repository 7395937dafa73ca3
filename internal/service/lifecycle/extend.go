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
	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

// Renew advances the subscription by one billing cycle, anchored on the
// current expiry rather than the clock. Renewing twice therefore advances
// twice. Lifetime subscriptions cannot be renewed.
func (s *Service) Renew(ctx context.Context, id int64, req *subscription.RenewRequest, adminID int64) (*subscription.RenewResult, error) {
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

	// A parked plan change (deferred upgrade or scheduled downgrade) takes
	// effect now, so the renewal is charged at the new plan's price.
	oldPlanCode := sub.PlanCode
	if sub.PendingPlanCode.Valid {
		pendingPlan, perr := s.plans.FindByCode(ctx, sub.ServiceID, sub.PendingPlanCode.String)
		if perr != nil {
			return nil, perr
		}
		if !pendingPlan.CycleAvailable(sub.BillingCycle) {
			return nil, xerrors.ErrCycleUnavailable
		}
		pendingPrice, perr := pendingPlan.PriceFor(sub.BillingCycle)
		if perr != nil {
			return nil, perr
		}
		s.applyPlanSnapshot(sub, pendingPlan, sub.BillingCycle, pendingPrice)
		sub.AutoUpgrade = false
		sub.PendingPlanCode = sql.NullString{}
	}

	oldExpiresAt := sub.ExpiresAt
	newExpiresAt, err := billing.Advance(oldExpiresAt, sub.BillingCycle, 1)
	if err != nil {
		return nil, err
	}

	amount := req.PaymentAmount
	if amount <= 0 {
		amount = sub.PlanPrice
	}

	now := time.Now()
	pay := &payment.Payment{
		SubscriptionID:     sub.ID,
		UserUUID:           sub.UserUUID,
		ServiceID:          sub.ServiceID,
		OrderID:            orderRef(orderPrefixRenewal),
		Amount:             amount,
		FinalAmount:        amount,
		Currency:           currency,
		PaymentMethod:      paymentMethodOrDefault(req.PaymentMethod),
		PaymentProvider:    "manual",
		Status:             payment.StatusCompleted,
		PaymentType:        payment.TypeRenewal,
		BillingCycle:       sub.BillingCycle,
		BillingPeriodStart: oldExpiresAt,
		BillingPeriodEnd:   newExpiresAt,
		PaidAt:             sql.NullTime{Time: now, Valid: true},
	}
	if req.TransactionID != "" {
		pay.TransactionID = sql.NullString{String: req.TransactionID, Valid: true}
	}
	if err := s.payments.CreateWithTx(ctx, tx, pay); err != nil {
		return nil, err
	}

	statusBefore := sub.Status
	sub.Status = subscription.StatusActive
	sub.ExpiresAt = newExpiresAt
	sub.TotalPaid += amount
	if sub.AutoRenewal {
		sub.NextBillingAt = sql.NullTime{Time: newExpiresAt, Valid: true}
	}
	if req.AdminNotes != "" {
		sub.AdminNotes = sql.NullString{String: req.AdminNotes, Valid: true}
	}

	if err := s.subs.UpdateWithTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	event := audit.Event{
		SubscriptionID: sub.ID,
		UserUUID:       sub.UserUUID,
		ServiceID:      sub.ServiceID,
		Action:         subscription.ActionRenew,
		Title:          "Subscription renewed",
		Description:    fmt.Sprintf("Expiry moved from %s to %s", oldExpiresAt.Format(time.RFC3339), newExpiresAt.Format(time.RFC3339)),
		StatusBefore:   string(statusBefore),
		StatusAfter:    string(sub.Status),
		Amount:         amount,
		AdminID:        adminID,
	}
	if sub.PlanCode != oldPlanCode {
		event.PlanBefore = oldPlanCode
		event.PlanAfter = sub.PlanCode
	}
	err = s.recorder.Record(ctx, tx, event)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("subscription renewed",
		zap.Int64("subscription_id", sub.ID),
		zap.Time("old_expires_at", oldExpiresAt),
		zap.Time("new_expires_at", newExpiresAt),
		zap.Float64("amount", amount),
	)

	return &subscription.RenewResult{
		SubscriptionID: sub.ID,
		OldExpiresAt:   oldExpiresAt,
		NewExpiresAt:   newExpiresAt,
		PaymentID:      pay.ID,
		PaymentAmount:  amount,
	}, nil
}

// Extend pushes the expiry forward by days, whole billing cycles or to an
// absolute date, and forces the subscription back to active. A payment row is
// only written when explicitly requested.
func (s *Service) Extend(ctx context.Context, id int64, req *subscription.ExtendRequest, adminID int64) (*subscription.ExtendResult, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := s.subs.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	oldExpiresAt := sub.ExpiresAt

	var newExpiresAt time.Time
	switch req.ExtendType {
	case "days":
		if req.ExtendDays < 1 {
			return nil, xerrors.ErrInvalidInput
		}
		newExpiresAt = oldExpiresAt.AddDate(0, 0, req.ExtendDays)

	case "billing_cycle":
		cycles := req.ExtendCycles
		if cycles < 1 {
			cycles = 1
		}
		newExpiresAt, err = billing.Advance(oldExpiresAt, sub.BillingCycle, cycles)
		if err != nil {
			return nil, err
		}

	case "custom":
		if req.CustomExpiresAt == nil || !req.CustomExpiresAt.After(now) {
			return nil, xerrors.ErrInvalidInput
		}
		newExpiresAt = *req.CustomExpiresAt

	default:
		return nil, xerrors.ErrInvalidInput
	}

	statusBefore := sub.Status
	sub.Status = subscription.StatusActive
	sub.ExpiresAt = newExpiresAt
	if sub.AutoRenewal && sub.BillingCycle.Recurring() {
		sub.NextBillingAt = sql.NullTime{Time: newExpiresAt, Valid: true}
	}
	if req.AdminNotes != "" {
		sub.AdminNotes = sql.NullString{String: req.AdminNotes, Valid: true}
	}

	var paymentID *int64
	if req.CreatePayment && req.ChargeAmount > 0 {
		pay := &payment.Payment{
			SubscriptionID:     sub.ID,
			UserUUID:           sub.UserUUID,
			ServiceID:          sub.ServiceID,
			OrderID:            orderRef(orderPrefixExtension),
			Amount:             req.ChargeAmount,
			FinalAmount:        req.ChargeAmount,
			Currency:           currency,
			PaymentMethod:      paymentMethodOrDefault(req.PaymentMethod),
			PaymentProvider:    "manual",
			Status:             payment.StatusCompleted,
			PaymentType:        payment.TypeExtension,
			BillingCycle:       sub.BillingCycle,
			BillingPeriodStart: oldExpiresAt,
			BillingPeriodEnd:   newExpiresAt,
			PaidAt:             sql.NullTime{Time: now, Valid: true},
		}
		if err := s.payments.CreateWithTx(ctx, tx, pay); err != nil {
			return nil, err
		}
		paymentID = &pay.ID
		sub.TotalPaid += req.ChargeAmount
	}

	if err := s.subs.UpdateWithTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	extensionDays := int(newExpiresAt.Sub(oldExpiresAt).Hours() / 24)

	description := req.ExtendReason
	if description == "" {
		description = fmt.Sprintf("Extended by %d days", extensionDays)
	}
	err = s.recorder.Record(ctx, tx, audit.Event{
		SubscriptionID: sub.ID,
		UserUUID:       sub.UserUUID,
		ServiceID:      sub.ServiceID,
		Action:         subscription.ActionExtend,
		Title:          "Subscription extended",
		Description:    description,
		StatusBefore:   string(statusBefore),
		StatusAfter:    string(sub.Status),
		Amount:         req.ChargeAmount,
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("subscription extended",
		zap.Int64("subscription_id", sub.ID),
		zap.String("extend_type", req.ExtendType),
		zap.Time("old_expires_at", oldExpiresAt),
		zap.Time("new_expires_at", newExpiresAt),
	)

	return &subscription.ExtendResult{
		SubscriptionID: sub.ID,
		OldExpiresAt:   oldExpiresAt,
		NewExpiresAt:   newExpiresAt,
		ExtensionDays:  extensionDays,
		PaymentID:      paymentID,
		ChargeAmount:   req.ChargeAmount,
	}, nil
}
