package plan

import (
	"database/sql"
	"time"

	"service-admin/internal/billing"
	xerrors "service-admin/internal/pkg/errors"
)

// Plan is a pricing tier of one service. Per-cycle prices and availability
// flags are stored side by side; upgrade/downgrade paths hold the plan codes
// a subscriber may arrive from.
type Plan struct {
	ID          int64          `json:"id" db:"id"`
	ServiceID   int64          `json:"service_id" db:"service_id"`
	PlanCode    string         `json:"plan_code" db:"plan_code"`
	PlanName    string         `json:"plan_name" db:"plan_name"`
	Description sql.NullString `json:"description,omitempty" db:"description"`

	MonthlyPrice   float64 `json:"monthly_price" db:"monthly_price"`
	QuarterlyPrice float64 `json:"quarterly_price" db:"quarterly_price"`
	YearlyPrice    float64 `json:"yearly_price" db:"yearly_price"`
	LifetimePrice  float64 `json:"lifetime_price" db:"lifetime_price"`

	MonthlyAvailable   bool `json:"monthly_available" db:"monthly_available"`
	QuarterlyAvailable bool `json:"quarterly_available" db:"quarterly_available"`
	YearlyAvailable    bool `json:"yearly_available" db:"yearly_available"`
	LifetimeAvailable  bool `json:"lifetime_available" db:"lifetime_available"`

	HasTrial        bool    `json:"has_trial" db:"has_trial"`
	TrialPeriodDays int     `json:"trial_period_days" db:"trial_period_days"`
	SetupFee        float64 `json:"setup_fee" db:"setup_fee"`

	Features       map[string]interface{} `json:"features,omitempty" db:"features"`
	UpgradePaths   []string               `json:"upgrade_paths" db:"upgrade_paths"`
	DowngradePaths []string               `json:"downgrade_paths" db:"downgrade_paths"`

	ImmediateUpgrade   bool `json:"immediate_upgrade" db:"immediate_upgrade"`
	ImmediateDowngrade bool `json:"immediate_downgrade" db:"immediate_downgrade"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PriceFor returns the plan's price for the given billing cycle.
func (p *Plan) PriceFor(c billing.Cycle) (float64, error) {
	switch c {
	case billing.CycleMonthly:
		return p.MonthlyPrice, nil
	case billing.CycleQuarterly:
		return p.QuarterlyPrice, nil
	case billing.CycleYearly:
		return p.YearlyPrice, nil
	case billing.CycleLifetime:
		return p.LifetimePrice, nil
	}
	return 0, xerrors.ErrUnsupportedBillingCycle
}

// CycleAvailable reports whether the plan can be sold on the given cycle.
func (p *Plan) CycleAvailable(c billing.Cycle) bool {
	switch c {
	case billing.CycleMonthly:
		return p.MonthlyAvailable
	case billing.CycleQuarterly:
		return p.QuarterlyAvailable
	case billing.CycleYearly:
		return p.YearlyAvailable
	case billing.CycleLifetime:
		return p.LifetimeAvailable
	}
	return false
}

// UpgradeAllowedFrom reports whether a subscriber on fromCode may upgrade
// into this plan.
func (p *Plan) UpgradeAllowedFrom(fromCode string) bool {
	return containsCode(p.UpgradePaths, fromCode)
}

// DowngradeAllowedFrom reports whether a subscriber on fromCode may
// downgrade into this plan.
func (p *Plan) DowngradeAllowedFrom(fromCode string) bool {
	return containsCode(p.DowngradePaths, fromCode)
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
