package subscription

import (
	"database/sql"
	"time"
)

type Action string

const (
	ActionSubscribe   Action = "subscribe"
	ActionRenew       Action = "renew"
	ActionExtend      Action = "extend"
	ActionUpgrade     Action = "upgrade"
	ActionDowngrade   Action = "downgrade"
	ActionRefund      Action = "refund"
	ActionActivate    Action = "activate"
	ActionSuspend     Action = "suspend"
	ActionCancel      Action = "cancel"
	ActionReactivate  Action = "reactivate"
	ActionExpire      Action = "expire"
	ActionAdminAction Action = "admin_action"
)

// Log is one append-only audit record. Rows are never updated or deleted.
type Log struct {
	ID             int64          `json:"id" db:"id"`
	SubscriptionID int64          `json:"subscription_id" db:"subscription_id"`
	UserUUID       string         `json:"user_uuid" db:"user_uuid"`
	ServiceID      int64          `json:"service_id" db:"service_id"`
	Action         Action         `json:"action" db:"action"`
	ActionTitle    string         `json:"action_title" db:"action_title"`
	ActionDesc     sql.NullString `json:"action_description,omitempty" db:"action_description"`
	StatusBefore   sql.NullString `json:"status_before,omitempty" db:"status_before"`
	StatusAfter    sql.NullString `json:"status_after,omitempty" db:"status_after"`
	PlanBefore     sql.NullString `json:"plan_before,omitempty" db:"plan_before"`
	PlanAfter      sql.NullString `json:"plan_after,omitempty" db:"plan_after"`
	Amount         float64        `json:"amount" db:"amount"`
	ProcessedBy    string         `json:"processed_by" db:"processed_by"`
	AdminID        sql.NullInt64  `json:"admin_id,omitempty" db:"admin_id"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

type LogListFilters struct {
	SubscriptionID *int64  `form:"subscription_id"`
	ServiceID      *int64  `form:"service_id"`
	Action         *Action `form:"action"`
	Page           int     `form:"page"`
	PageSize       int     `form:"page_size"`
}

type LogListResponse struct {
	Logs       []Log `json:"logs"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}
