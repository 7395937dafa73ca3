package subscription

import "time"

type SubscribeRequest struct {
	UserUUID  string `json:"user_uuid" binding:"required,max=255"`
	UserEmail string `json:"user_email" binding:"required,email,max=255"`
	UserName  string `json:"user_name" binding:"required,max=255"`
	UserShard string `json:"user_shard" binding:"omitempty,max=255"`

	ServiceID    int64  `json:"service_id" binding:"required"`
	PlanCode     string `json:"plan_code" binding:"required,max=100"`
	BillingCycle string `json:"billing_cycle" binding:"required,oneof=monthly quarterly yearly lifetime"`

	PaymentMethod string `json:"payment_method" binding:"omitempty,max=50"`
	AutoRenewal   bool   `json:"auto_renewal"`
	UseTrial      bool   `json:"use_trial"`
}

type SubscribeResult struct {
	SubscriptionID int64     `json:"subscription_id"`
	UserUUID       string    `json:"user_uuid"`
	PlanName       string    `json:"plan_name"`
	Status         Status    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
	PaymentID      *int64    `json:"payment_id,omitempty"`
}

type ConfirmPaymentRequest struct {
	TransactionID string `json:"transaction_id" binding:"omitempty,max=255"`
	AdminNotes    string `json:"admin_notes" binding:"omitempty,max=1000"`
}

type ExtendRequest struct {
	ExtendType      string     `json:"extend_type" binding:"required,oneof=days billing_cycle custom"`
	ExtendDays      int        `json:"extend_days" binding:"omitempty,min=1,max=3650"`
	ExtendCycles    int        `json:"extend_cycles" binding:"omitempty,min=1,max=12"`
	CustomExpiresAt *time.Time `json:"custom_expires_at"`

	ChargeAmount  float64 `json:"charge_amount" binding:"omitempty,min=0"`
	PaymentMethod string  `json:"payment_method" binding:"omitempty,max=50"`
	CreatePayment bool    `json:"create_payment"`

	ExtendReason string `json:"extend_reason" binding:"omitempty,max=500"`
	AdminNotes   string `json:"admin_notes" binding:"omitempty,max=1000"`
}

type ExtendResult struct {
	SubscriptionID int64     `json:"subscription_id"`
	OldExpiresAt   time.Time `json:"old_expires_at"`
	NewExpiresAt   time.Time `json:"new_expires_at"`
	ExtensionDays  int       `json:"extension_days"`
	PaymentID      *int64    `json:"payment_id,omitempty"`
	ChargeAmount   float64   `json:"charge_amount"`
}

type RenewRequest struct {
	PaymentAmount float64 `json:"payment_amount" binding:"min=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,max=50"`
	TransactionID string  `json:"transaction_id" binding:"omitempty,max=255"`
	AdminNotes    string  `json:"admin_notes" binding:"omitempty,max=1000"`
}

type RenewResult struct {
	SubscriptionID int64     `json:"subscription_id"`
	OldExpiresAt   time.Time `json:"old_expires_at"`
	NewExpiresAt   time.Time `json:"new_expires_at"`
	PaymentID      int64     `json:"payment_id"`
	PaymentAmount  float64   `json:"payment_amount"`
}

// PlanChangeRequest covers both upgrade and downgrade. RefundAmount is only
// honoured on downgrades.
type PlanChangeRequest struct {
	NewPlanCode   string  `json:"new_plan_code" binding:"required,max=100"`
	BillingCycle  string  `json:"billing_cycle" binding:"omitempty,oneof=monthly quarterly yearly lifetime"`
	PaymentMethod string  `json:"payment_method" binding:"omitempty,max=50"`
	Prorate       bool    `json:"prorate_payment"`
	Immediate     bool    `json:"immediate"`
	RefundAmount  float64 `json:"refund_amount" binding:"omitempty,min=0"`
	AdminNotes    string  `json:"admin_notes" binding:"omitempty,max=1000"`
}

type PlanChangeResult struct {
	SubscriptionID int64   `json:"subscription_id"`
	OldPlan        string  `json:"old_plan"`
	NewPlan        string  `json:"new_plan"`
	ChargeAmount   float64 `json:"charge_amount,omitempty"`
	RefundAmount   float64 `json:"refund_amount,omitempty"`
	PaymentID      *int64  `json:"payment_id,omitempty"`
	Immediate      bool    `json:"immediate"`
}

type StatusActionRequest struct {
	Reason     string `json:"reason" binding:"omitempty,max=500"`
	AdminNotes string `json:"admin_notes" binding:"omitempty,max=1000"`
}

type ListFilters struct {
	Status    *Status `form:"status"`
	ServiceID *int64  `form:"service_id"`
	PlanCode  *string `form:"plan_code"`
	UserUUID  *string `form:"user_uuid"`
	Expiring  bool    `form:"expiring"`
	Page      int     `form:"page" binding:"omitempty,min=1"`
	PageSize  int     `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string  `form:"sort_by" binding:"omitempty,oneof=created_at expires_at started_at total_paid"`
	SortOrder string  `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type ListResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int            `json:"total_pages"`
}
