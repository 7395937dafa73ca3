package payment

type RefundRequest struct {
	RefundType   string  `json:"refund_type" binding:"required,oneof=full partial payment_specific"`
	RefundAmount float64 `json:"refund_amount" binding:"omitempty,min=0"`
	PaymentID    int64   `json:"payment_id"`

	RefundReason  string `json:"refund_reason" binding:"required,max=500"`
	RefundMethod  string `json:"refund_method" binding:"omitempty,max=50"`
	TransactionID string `json:"transaction_id" binding:"omitempty,max=255"`

	CancelSubscription bool   `json:"cancel_subscription"`
	AdminNotes         string `json:"admin_notes" binding:"omitempty,max=1000"`
}

type RefundResult struct {
	SubscriptionID        int64   `json:"subscription_id"`
	RefundAmount          float64 `json:"refund_amount"`
	TotalRefunded         float64 `json:"total_refunded"`
	PaymentID             *int64  `json:"payment_id,omitempty"`
	SubscriptionCancelled bool    `json:"subscription_cancelled"`
}

type CancelRefundRequest struct {
	CancelReason string `json:"cancel_reason" binding:"required,max=500"`
	AdminNotes   string `json:"admin_notes" binding:"omitempty,max=1000"`
}

type CancelRefundResult struct {
	SubscriptionID        int64   `json:"subscription_id"`
	PaymentID             int64   `json:"payment_id"`
	CancelledRefundAmount float64 `json:"cancelled_refund_amount"`
}

// RefundablePayment is one row of the refundable-amount summary.
type RefundablePayment struct {
	PaymentID        int64   `json:"payment_id"`
	OrderID          string  `json:"order_id"`
	Amount           float64 `json:"amount"`
	RefundedAmount   float64 `json:"refunded_amount"`
	RefundableAmount float64 `json:"refundable_amount"`
	PaymentType      Type    `json:"payment_type"`
}

type RefundableSummary struct {
	TotalPaid          float64             `json:"total_paid"`
	TotalRefunded      float64             `json:"total_refunded"`
	TotalRefundable    float64             `json:"total_refundable"`
	RefundablePayments []RefundablePayment `json:"refundable_payments"`
}

type RefundHistory struct {
	RefundedPayments []Payment `json:"refunded_payments"`
	TotalRefunded    float64   `json:"total_refunded"`
	TotalPaid        float64   `json:"total_paid"`
	RefundRatio      float64   `json:"refund_ratio"`
	RefundCount      int       `json:"refund_count"`
}
