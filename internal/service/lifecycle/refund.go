package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-admin/internal/audit"
	"service-admin/internal/domain/payment"
	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

// Refund returns money against a subscription. The amount never exceeds
// total_paid minus what was already refunded. Full and partial refunds are
// distributed across the payment ledger oldest first; payment_specific
// refunds target one payment row.
func (s *Service) Refund(ctx context.Context, id int64, req *payment.RefundRequest, adminID int64) (*payment.RefundResult, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := s.subs.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	ceiling := sub.RefundableAmount()
	if ceiling <= 0 {
		return nil, xerrors.ErrNothingToRefund
	}

	now := time.Now()
	var amount float64
	var targetPaymentID *int64

	switch req.RefundType {
	case "full":
		amount = ceiling
		if err := s.distributeRefund(ctx, tx, sub.ID, amount, req, now); err != nil {
			return nil, err
		}

	case "partial":
		amount = req.RefundAmount
		if amount <= 0 {
			return nil, xerrors.ErrInvalidInput
		}
		if amount > ceiling {
			return nil, xerrors.ErrRefundExceedsBalance
		}
		if err := s.distributeRefund(ctx, tx, sub.ID, amount, req, now); err != nil {
			return nil, err
		}

	case "payment_specific":
		if req.PaymentID == 0 {
			return nil, xerrors.ErrInvalidInput
		}
		pay, err := s.payments.FindByIDForUpdate(ctx, tx, req.PaymentID)
		if err != nil {
			return nil, err
		}
		if pay.SubscriptionID != sub.ID {
			return nil, xerrors.ErrNotFound
		}

		amount = req.RefundAmount
		if amount <= 0 {
			amount = pay.RefundableAmount()
		}
		if amount <= 0 {
			return nil, xerrors.ErrNothingToRefund
		}
		if amount > pay.RefundableAmount() || amount > ceiling {
			return nil, xerrors.ErrRefundExceedsBalance
		}

		if err := s.applyPaymentRefund(ctx, tx, pay, amount, req, now); err != nil {
			return nil, err
		}
		targetPaymentID = &pay.ID

	default:
		return nil, xerrors.ErrInvalidInput
	}

	sub.RefundAmount += amount
	sub.RefundedAt = sql.NullTime{Time: now, Valid: true}

	statusBefore := sub.Status
	cancelled := false
	if req.CancelSubscription && subscription.CanTransition(sub.Status, subscription.StatusCancelled) {
		sub.Status = subscription.StatusCancelled
		sub.CancelledAt = sql.NullTime{Time: now, Valid: true}
		sub.CancelReason = sql.NullString{String: req.RefundReason, Valid: true}
		sub.AutoRenewal = false
		sub.NextBillingAt = sql.NullTime{}
		cancelled = true
	}
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
		Action:         subscription.ActionRefund,
		Title:          "Refund processed",
		Description:    fmt.Sprintf("%s refund: %s", req.RefundType, req.RefundReason),
		StatusBefore:   string(statusBefore),
		StatusAfter:    string(sub.Status),
		Amount:         amount,
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("refund processed",
		zap.Int64("subscription_id", sub.ID),
		zap.String("refund_type", req.RefundType),
		zap.Float64("amount", amount),
		zap.Bool("cancelled", cancelled),
	)

	return &payment.RefundResult{
		SubscriptionID:        sub.ID,
		RefundAmount:          amount,
		TotalRefunded:         sub.RefundAmount,
		PaymentID:             targetPaymentID,
		SubscriptionCancelled: cancelled,
	}, nil
}

// distributeRefund spreads amount across the subscription's completed
// payments, oldest first.
func (s *Service) distributeRefund(ctx context.Context, tx pgx.Tx, subscriptionID int64, amount float64, req *payment.RefundRequest, now time.Time) error {
	payments, err := s.payments.ListCompletedBySubscriptionWithTx(ctx, tx, subscriptionID)
	if err != nil {
		return err
	}

	remaining := amount
	for i := range payments {
		if remaining <= 0 {
			break
		}
		pay := &payments[i]

		refundable := pay.RefundableAmount()
		if refundable <= 0 {
			continue
		}

		portion := refundable
		if portion > remaining {
			portion = remaining
		}

		if err := s.applyPaymentRefund(ctx, tx, pay, portion, req, now); err != nil {
			return err
		}
		remaining -= portion
	}

	if remaining > 0.005 {
		return xerrors.ErrRefundExceedsBalance
	}

	return nil
}

func (s *Service) applyPaymentRefund(ctx context.Context, tx pgx.Tx, pay *payment.Payment, amount float64, req *payment.RefundRequest, now time.Time) error {
	pay.RefundedAmount += amount
	if pay.RefundedAmount >= pay.FinalAmount {
		pay.Status = payment.StatusRefunded
	}
	pay.RefundedAt = sql.NullTime{Time: now, Valid: true}
	pay.RefundReason = sql.NullString{String: req.RefundReason, Valid: true}
	if req.TransactionID != "" {
		pay.RefundTransactionID = sql.NullString{String: req.TransactionID, Valid: true}
	}

	return s.payments.UpdateRefundWithTx(ctx, tx, pay)
}

// CancelRefund reverses a previously processed refund on one payment. The
// payment must actually carry a refund, and the subscription's refund total
// never drops below zero.
func (s *Service) CancelRefund(ctx context.Context, id, paymentID int64, req *payment.CancelRefundRequest, adminID int64) (*payment.CancelRefundResult, error) {
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
	if pay.RefundedAmount <= 0 {
		return nil, xerrors.ErrPaymentNotRefunded
	}

	reversed := pay.RefundedAmount
	pay.RefundedAmount = 0
	pay.Status = payment.StatusCompleted
	pay.RefundedAt = sql.NullTime{}
	pay.RefundReason = sql.NullString{}
	pay.RefundTransactionID = sql.NullString{}

	if err := s.payments.UpdateRefundWithTx(ctx, tx, pay); err != nil {
		return nil, err
	}

	sub.RefundAmount -= reversed
	if sub.RefundAmount < 0 {
		sub.RefundAmount = 0
	}
	if sub.RefundAmount == 0 {
		sub.RefundedAt = sql.NullTime{}
	}
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
		Title:          "Refund cancelled",
		Description:    req.CancelReason,
		StatusBefore:   string(sub.Status),
		StatusAfter:    string(sub.Status),
		Amount:         reversed,
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("refund cancelled",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("payment_id", pay.ID),
		zap.Float64("reversed", reversed),
	)

	return &payment.CancelRefundResult{
		SubscriptionID:        sub.ID,
		PaymentID:             pay.ID,
		CancelledRefundAmount: reversed,
	}, nil
}

// RefundableSummary reports how much of a subscription can still be
// refunded, per payment and in total.
func (s *Service) RefundableSummary(ctx context.Context, id int64) (*payment.RefundableSummary, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListBySubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &payment.RefundableSummary{
		TotalPaid:          sub.TotalPaid,
		TotalRefunded:      sub.RefundAmount,
		TotalRefundable:    sub.RefundableAmount(),
		RefundablePayments: []payment.RefundablePayment{},
	}

	for i := range payments {
		pay := &payments[i]
		refundable := pay.RefundableAmount()
		if refundable <= 0 {
			continue
		}
		summary.RefundablePayments = append(summary.RefundablePayments, payment.RefundablePayment{
			PaymentID:        pay.ID,
			OrderID:          pay.OrderID,
			Amount:           pay.FinalAmount,
			RefundedAmount:   pay.RefundedAmount,
			RefundableAmount: refundable,
			PaymentType:      pay.PaymentType,
		})
	}

	return summary, nil
}

// RefundHistory reports the refunds already taken against a subscription.
func (s *Service) RefundHistory(ctx context.Context, id int64) (*payment.RefundHistory, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListBySubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	history := &payment.RefundHistory{
		RefundedPayments: []payment.Payment{},
		TotalRefunded:    sub.RefundAmount,
		TotalPaid:        sub.TotalPaid,
	}
	for _, pay := range payments {
		if pay.RefundedAmount > 0 {
			history.RefundedPayments = append(history.RefundedPayments, pay)
		}
	}
	history.RefundCount = len(history.RefundedPayments)
	if sub.TotalPaid > 0 {
		history.RefundRatio = sub.RefundAmount / sub.TotalPaid
	}

	return history, nil
}
