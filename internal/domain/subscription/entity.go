package subscription

import (
	"database/sql"
	"time"

	"service-admin/internal/billing"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// transitions is the lifecycle state machine. Cancelled and expired are
// terminal except for the explicit reactivate path back to active.
var transitions = map[Status][]Status{
	StatusPending:   {StatusActive, StatusCancelled},
	StatusTrial:     {StatusActive, StatusCancelled, StatusExpired},
	StatusActive:    {StatusSuspended, StatusCancelled, StatusExpired},
	StatusSuspended: {StatusActive, StatusCancelled},
	StatusCancelled: {StatusActive},
	StatusExpired:   {StatusActive},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Subscription struct {
	ID int64 `json:"id" db:"id"`

	// Subscriber identity. UserUUID is an opaque reference into the external
	// identity store; UserShard is a shard label and is never joined against.
	UserUUID  string         `json:"user_uuid" db:"user_uuid"`
	UserEmail string         `json:"user_email" db:"user_email"`
	UserName  string         `json:"user_name" db:"user_name"`
	UserShard sql.NullString `json:"user_shard,omitempty" db:"user_shard"`

	// Plan binding. PlanID is the authoritative reference; code, name and
	// price are denormalized display snapshots taken at subscribe time.
	ServiceID    int64                  `json:"service_id" db:"service_id"`
	PlanID       int64                  `json:"plan_id" db:"plan_id"`
	PlanCode     string                 `json:"plan_code" db:"plan_code"`
	PlanName     string                 `json:"plan_name" db:"plan_name"`
	PlanPrice    float64                `json:"plan_price" db:"plan_price"`
	PlanFeatures map[string]interface{} `json:"plan_features,omitempty" db:"plan_features"`

	BillingCycle  billing.Cycle `json:"billing_cycle" db:"billing_cycle"`
	Status        Status        `json:"status" db:"status"`
	StartedAt     time.Time     `json:"started_at" db:"started_at"`
	ExpiresAt     time.Time     `json:"expires_at" db:"expires_at"`
	NextBillingAt sql.NullTime  `json:"next_billing_at,omitempty" db:"next_billing_at"`

	AutoRenewal     bool           `json:"auto_renewal" db:"auto_renewal"`
	AutoUpgrade     bool           `json:"auto_upgrade" db:"auto_upgrade"`
	PendingPlanCode sql.NullString `json:"pending_plan_code,omitempty" db:"pending_plan_code"`

	// Running payment totals. RefundAmount never exceeds TotalPaid.
	TotalPaid    float64      `json:"total_paid" db:"total_paid"`
	RefundAmount float64      `json:"refund_amount" db:"refund_amount"`
	RefundedAt   sql.NullTime `json:"refunded_at,omitempty" db:"refunded_at"`

	CancelledAt  sql.NullTime   `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancelReason sql.NullString `json:"cancel_reason,omitempty" db:"cancel_reason"`
	AdminNotes   sql.NullString `json:"admin_notes,omitempty" db:"admin_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RefundableAmount returns the per-subscription refund ceiling.
func (s *Subscription) RefundableAmount() float64 {
	return s.TotalPaid - s.RefundAmount
}
