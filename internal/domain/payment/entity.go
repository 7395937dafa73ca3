package payment

import (
	"database/sql"
	"time"

	"service-admin/internal/billing"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type Type string

const (
	TypeSubscription Type = "subscription"
	TypeRenewal      Type = "renewal"
	TypeUpgrade      Type = "upgrade"
	TypeExtension    Type = "extension"
)

// Payment is one ledger row of a subscription. Rows are immutable once
// written except for the refund fields.
type Payment struct {
	ID             int64          `json:"id" db:"id"`
	SubscriptionID int64          `json:"subscription_id" db:"subscription_id"`
	UserUUID       string         `json:"user_uuid" db:"user_uuid"`
	ServiceID      int64          `json:"service_id" db:"service_id"`
	OrderID        string         `json:"order_id" db:"order_id"`
	TransactionID  sql.NullString `json:"transaction_id,omitempty" db:"transaction_id"`

	Amount         float64 `json:"amount" db:"amount"`
	TaxAmount      float64 `json:"tax_amount" db:"tax_amount"`
	DiscountAmount float64 `json:"discount_amount" db:"discount_amount"`
	FinalAmount    float64 `json:"final_amount" db:"final_amount"`
	Currency       string  `json:"currency" db:"currency"`

	PaymentMethod   string `json:"payment_method" db:"payment_method"`
	PaymentProvider string `json:"payment_provider" db:"payment_provider"`

	Status      Status `json:"status" db:"status"`
	PaymentType Type   `json:"payment_type" db:"payment_type"`

	BillingCycle       billing.Cycle `json:"billing_cycle" db:"billing_cycle"`
	BillingPeriodStart time.Time     `json:"billing_period_start" db:"billing_period_start"`
	BillingPeriodEnd   time.Time     `json:"billing_period_end" db:"billing_period_end"`
	DueDate            sql.NullTime  `json:"due_date,omitempty" db:"due_date"`
	PaidAt             sql.NullTime  `json:"paid_at,omitempty" db:"paid_at"`

	RefundedAmount      float64        `json:"refunded_amount" db:"refunded_amount"`
	RefundedAt          sql.NullTime   `json:"refunded_at,omitempty" db:"refunded_at"`
	RefundReason        sql.NullString `json:"refund_reason,omitempty" db:"refund_reason"`
	RefundTransactionID sql.NullString `json:"refund_transaction_id,omitempty" db:"refund_transaction_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RefundableAmount returns how much of this payment can still be refunded.
// Only completed or partially refunded payments carry a refundable balance.
func (p *Payment) RefundableAmount() float64 {
	if p.Status != StatusCompleted && p.Status != StatusRefunded {
		return 0
	}
	remaining := p.FinalAmount - p.RefundedAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}
