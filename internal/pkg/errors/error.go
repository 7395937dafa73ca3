package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInternal     = errors.New("internal server error")
)

// Subscription lifecycle errors
var (
	ErrPlanNotFound            = errors.New("plan not found")
	ErrPlanMismatch            = errors.New("plan could not be resolved")
	ErrCycleUnavailable        = errors.New("billing cycle not available for this plan")
	ErrUnsupportedBillingCycle = errors.New("unsupported billing cycle")
	ErrTransitionNotAllowed    = errors.New("status transition not allowed")
	ErrPlanChangeNotAllowed    = errors.New("plan change path not allowed")
	ErrRefundExceedsBalance    = errors.New("refund amount exceeds refundable balance")
	ErrNothingToRefund         = errors.New("no refundable amount remaining")
	ErrPaymentNotRefunded      = errors.New("payment has not been refunded")
	ErrLastPriceOption         = errors.New("at least one price option required")
	ErrDuplicateSubscription   = errors.New("user already subscribed to this service")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
