// Package billing holds the date arithmetic and proration rules shared by
// every subscription lifecycle operation.
package billing

import (
	"time"

	xerrors "service-admin/internal/pkg/errors"
)

type Cycle string

const (
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
	CycleYearly    Cycle = "yearly"
	CycleLifetime  Cycle = "lifetime"
)

// lifetime subscriptions are modelled as a far-future expiry rather than a
// nullable date, so every subscription row carries a comparable expires_at.
const lifetimeYears = 100

// Valid reports whether c is one of the recognised billing cycles.
func (c Cycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleYearly, CycleLifetime:
		return true
	}
	return false
}

// Recurring reports whether the cycle bills repeatedly.
func (c Cycle) Recurring() bool {
	return c.Valid() && c != CycleLifetime
}

// PeriodEnd returns the expiry for a period starting at start. Used on first
// subscribe, where lifetime is a legal choice.
func PeriodEnd(start time.Time, c Cycle) (time.Time, error) {
	switch c {
	case CycleMonthly:
		return start.AddDate(0, 1, 0), nil
	case CycleQuarterly:
		return start.AddDate(0, 3, 0), nil
	case CycleYearly:
		return start.AddDate(1, 0, 0), nil
	case CycleLifetime:
		return start.AddDate(lifetimeYears, 0, 0), nil
	}
	return time.Time{}, xerrors.ErrUnsupportedBillingCycle
}

// Advance moves t forward by n cycle lengths. Renewals and cycle-based
// extensions anchor on the current expiry, not on the clock; a lifetime or
// unknown cycle is an error rather than a silent fallback to monthly.
func Advance(t time.Time, c Cycle, n int) (time.Time, error) {
	if n < 1 {
		return time.Time{}, xerrors.ErrInvalidInput
	}
	switch c {
	case CycleMonthly:
		return t.AddDate(0, n, 0), nil
	case CycleQuarterly:
		return t.AddDate(0, 3*n, 0), nil
	case CycleYearly:
		return t.AddDate(n, 0, 0), nil
	}
	return time.Time{}, xerrors.ErrUnsupportedBillingCycle
}

// Days returns the fixed divisor used for proration. These are deliberately
// not calendar-accurate (30/90/365).
func Days(c Cycle) (int, error) {
	switch c {
	case CycleMonthly:
		return 30, nil
	case CycleQuarterly:
		return 90, nil
	case CycleYearly:
		return 365, nil
	}
	return 0, xerrors.ErrUnsupportedBillingCycle
}

// RemainingDays returns whole days between now and expiry, clamped at zero.
func RemainingDays(now, expiresAt time.Time) int {
	if !expiresAt.After(now) {
		return 0
	}
	return int(expiresAt.Sub(now).Hours() / 24)
}

// Prorate scales a price delta by the unused share of the billing period.
func Prorate(delta float64, remainingDays, totalDays int) float64 {
	if totalDays <= 0 {
		return delta
	}
	if remainingDays < 0 {
		remainingDays = 0
	}
	if remainingDays > totalDays {
		remainingDays = totalDays
	}
	return delta * float64(remainingDays) / float64(totalDays)
}
