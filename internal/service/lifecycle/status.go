package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"service-admin/internal/audit"
	"service-admin/internal/billing"
	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

// Activate moves a pending, trial or suspended subscription to active.
func (s *Service) Activate(ctx context.Context, id int64, req *subscription.StatusActionRequest, adminID int64) (*subscription.Subscription, error) {
	return s.transition(ctx, id, subscription.StatusActive, subscription.ActionActivate, "Subscription activated", req, adminID)
}

// Suspend pauses an active subscription. The expiry keeps running.
func (s *Service) Suspend(ctx context.Context, id int64, req *subscription.StatusActionRequest, adminID int64) (*subscription.Subscription, error) {
	return s.transition(ctx, id, subscription.StatusSuspended, subscription.ActionSuspend, "Subscription suspended", req, adminID)
}

// Cancel ends a subscription. Auto renewal is switched off and the reason is
// kept on the row.
func (s *Service) Cancel(ctx context.Context, id int64, req *subscription.StatusActionRequest, adminID int64) (*subscription.Subscription, error) {
	return s.transition(ctx, id, subscription.StatusCancelled, subscription.ActionCancel, "Subscription cancelled", req, adminID)
}

// Reactivate brings a cancelled or expired subscription back to active. An
// already-lapsed expiry is replaced with a fresh period starting now.
func (s *Service) Reactivate(ctx context.Context, id int64, req *subscription.StatusActionRequest, adminID int64) (*subscription.Subscription, error) {
	return s.transition(ctx, id, subscription.StatusActive, subscription.ActionReactivate, "Subscription reactivated", req, adminID)
}

func (s *Service) transition(
	ctx context.Context,
	id int64,
	target subscription.Status,
	action subscription.Action,
	title string,
	req *subscription.StatusActionRequest,
	adminID int64,
) (*subscription.Subscription, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := s.subs.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	statusBefore := sub.Status
	if !subscription.CanTransition(statusBefore, target) {
		return nil, xerrors.ErrTransitionNotAllowed
	}
	// Reactivate is the only legal route out of cancelled or expired.
	if action != subscription.ActionReactivate &&
		(statusBefore == subscription.StatusCancelled || statusBefore == subscription.StatusExpired) {
		return nil, xerrors.ErrTransitionNotAllowed
	}

	now := time.Now()
	sub.Status = target

	switch action {
	case subscription.ActionCancel:
		sub.CancelledAt = sql.NullTime{Time: now, Valid: true}
		if req.Reason != "" {
			sub.CancelReason = sql.NullString{String: req.Reason, Valid: true}
		}
		sub.AutoRenewal = false
		sub.NextBillingAt = sql.NullTime{}

	case subscription.ActionReactivate:
		sub.CancelledAt = sql.NullTime{}
		sub.CancelReason = sql.NullString{}
		if !sub.ExpiresAt.After(now) {
			expiresAt, perr := billing.PeriodEnd(now, sub.BillingCycle)
			if perr != nil {
				return nil, perr
			}
			sub.StartedAt = now
			sub.ExpiresAt = expiresAt
		}
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
		Action:         action,
		Title:          title,
		Description:    req.Reason,
		StatusBefore:   string(statusBefore),
		StatusAfter:    string(sub.Status),
		AdminID:        adminID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("subscription status changed",
		zap.Int64("subscription_id", sub.ID),
		zap.String("action", string(action)),
		zap.String("from", string(statusBefore)),
		zap.String("to", string(sub.Status)),
	)

	return sub, nil
}
