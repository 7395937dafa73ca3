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

// Subscribe creates a subscription for a user on a service. A user may hold
// at most one live subscription per service.
func (s *Service) Subscribe(ctx context.Context, req *subscription.SubscribeRequest, adminID int64) (*subscription.SubscribeResult, error) {
	cycle := billing.Cycle(req.BillingCycle)
	if !cycle.Valid() {
		return nil, xerrors.ErrUnsupportedBillingCycle
	}

	p, err := s.plans.FindByCode(ctx, req.ServiceID, req.PlanCode)
	if err != nil {
		return nil, err
	}
	if !p.CycleAvailable(cycle) {
		return nil, xerrors.ErrCycleUnavailable
	}

	existing, err := s.subs.FindActiveByUserAndService(ctx, req.UserUUID, req.ServiceID)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, xerrors.ErrDuplicateSubscription
	}

	price, err := p.PriceFor(cycle)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	useTrial := req.UseTrial && p.HasTrial && p.TrialPeriodDays > 0

	var status subscription.Status
	var expiresAt time.Time
	if useTrial {
		status = subscription.StatusTrial
		expiresAt = now.AddDate(0, 0, p.TrialPeriodDays)
	} else {
		status = subscription.StatusActive
		expiresAt, err = billing.PeriodEnd(now, cycle)
		if err != nil {
			return nil, err
		}
	}

	sub := &subscription.Subscription{
		UserUUID:     req.UserUUID,
		UserEmail:    req.UserEmail,
		UserName:     req.UserName,
		ServiceID:    req.ServiceID,
		PlanID:       p.ID,
		PlanCode:     p.PlanCode,
		PlanName:     p.PlanName,
		PlanPrice:    price,
		PlanFeatures: p.Features,
		BillingCycle: cycle,
		Status:       status,
		StartedAt:    now,
		ExpiresAt:    expiresAt,
		AutoRenewal:  req.AutoRenewal,
	}
	if req.UserShard != "" {
		sub.UserShard = sql.NullString{String: req.UserShard, Valid: true}
	}
	if req.AutoRenewal && cycle.Recurring() {
		sub.NextBillingAt = sql.NullTime{Time: expiresAt, Valid: true}
	}

	// Paid plans start with an open payment due in a week; total_paid stays
	// zero until it completes.
	chargeAmount := 0.0
	if !useTrial {
		chargeAmount = price + p.SetupFee
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.subs.CreateWithTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	var paymentID *int64
	if chargeAmount > 0 {
		pay := &payment.Payment{
			SubscriptionID:     sub.ID,
			UserUUID:           sub.UserUUID,
			ServiceID:          sub.ServiceID,
			OrderID:            orderRef(orderPrefixSubscribe),
			Amount:             price,
			FinalAmount:        chargeAmount,
			Currency:           currency,
			PaymentMethod:      paymentMethodOrDefault(req.PaymentMethod),
			PaymentProvider:    "manual",
			Status:             payment.StatusPending,
			PaymentType:        payment.TypeSubscription,
			BillingCycle:       cycle,
			BillingPeriodStart: now,
			BillingPeriodEnd:   expiresAt,
			DueDate:            sql.NullTime{Time: now.AddDate(0, 0, 7), Valid: true},
		}
		if err := s.payments.CreateWithTx(ctx, tx, pay); err != nil {
			return nil, err
		}
		paymentID = &pay.ID
	}

	err = s.recorder.Record(ctx, tx, audit.Event{
		SubscriptionID: sub.ID,
		UserUUID:       sub.UserUUID,
		ServiceID:      sub.ServiceID,
		Action:         subscription.ActionSubscribe,
		Title:          "Subscription created",
		Description:    fmt.Sprintf("Subscribed to %s (%s)", p.PlanName, cycle),
		StatusAfter:    string(status),
		PlanAfter:      p.PlanCode,
		Amount:         chargeAmount,
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("subscription created",
		zap.Int64("subscription_id", sub.ID),
		zap.String("user_uuid", sub.UserUUID),
		zap.String("plan_code", sub.PlanCode),
		zap.String("billing_cycle", string(cycle)),
		zap.Bool("trial", useTrial),
	)

	return &subscription.SubscribeResult{
		SubscriptionID: sub.ID,
		UserUUID:       sub.UserUUID,
		PlanName:       sub.PlanName,
		Status:         sub.Status,
		ExpiresAt:      sub.ExpiresAt,
		PaymentID:      paymentID,
	}, nil
}

// ConfirmPayment settles a pending payment and credits the subscription's
// paid total.
func (s *Service) ConfirmPayment(ctx context.Context, id, paymentID int64, req *subscription.ConfirmPaymentRequest, adminID int64) (*payment.Payment, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := s.subs.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	pay, err := s.payments.FindByIDForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	if pay.SubscriptionID != sub.ID {
		return nil, xerrors.ErrNotFound
	}
	if pay.Status != payment.StatusPending {
		return nil, xerrors.ErrConflict
	}

	now := time.Now()
	pay.Status = payment.StatusCompleted
	pay.PaidAt = sql.NullTime{Time: now, Valid: true}
	if req.TransactionID != "" {
		pay.TransactionID = sql.NullString{String: req.TransactionID, Valid: true}
	}
	if err := s.payments.MarkCompletedWithTx(ctx, tx, pay); err != nil {
		return nil, err
	}

	sub.TotalPaid += pay.FinalAmount
	if req.AdminNotes != "" {
		sub.AdminNotes = sql.NullString{String: req.AdminNotes, Valid: true}
	}
	if err := s.subs.UpdateWithTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	err = s.recorder.Record(ctx, tx, audit.Event{
		SubscriptionID: sub.ID,
		UserUUID:       sub.UserUUID,
		ServiceID:      sub.ServiceID,
		Action:         subscription.ActionAdminAction,
		Title:          "Payment confirmed",
		Description:    fmt.Sprintf("Payment %s completed", pay.OrderID),
		Amount:         pay.FinalAmount,
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("payment confirmed",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("payment_id", pay.ID),
		zap.Float64("amount", pay.FinalAmount),
	)

	return pay, nil
}

func paymentMethodOrDefault(method string) string {
	if method == "" {
		return "manual"
	}
	return method
}
