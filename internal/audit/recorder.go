// Package audit is the single write path for subscription audit records.
// Every lifecycle operation records its change here, inside the same
// transaction that applies it, and the event is then pushed to the admin
// event feed.
package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-admin/internal/domain/subscription"
)

// Event describes one lifecycle change.
type Event struct {
	SubscriptionID int64
	UserUUID       string
	ServiceID      int64

	Action      subscription.Action
	Title       string
	Description string

	StatusBefore string
	StatusAfter  string
	PlanBefore   string
	PlanAfter    string

	Amount float64

	ProcessedBy string
	AdminID     int64
}

// Recorder persists events. Services depend on the interface so tests can
// capture recorded events without a database.
type Recorder interface {
	Record(ctx context.Context, tx pgx.Tx, e Event) error
}

type logStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, log *subscription.Log) error
}

type broadcaster interface {
	BroadcastEvent(v interface{})
}

type recorder struct {
	logs   logStore
	feed   broadcaster
	logger *zap.Logger
}

func NewRecorder(logs logStore, feed broadcaster, logger *zap.Logger) Recorder {
	return &recorder{logs: logs, feed: feed, logger: logger}
}

func (r *recorder) Record(ctx context.Context, tx pgx.Tx, e Event) error {
	if e.ProcessedBy == "" {
		e.ProcessedBy = "admin"
	}

	row := &subscription.Log{
		SubscriptionID: e.SubscriptionID,
		UserUUID:       e.UserUUID,
		ServiceID:      e.ServiceID,
		Action:         e.Action,
		ActionTitle:    e.Title,
		ActionDesc:     nullString(e.Description),
		StatusBefore:   nullString(e.StatusBefore),
		StatusAfter:    nullString(e.StatusAfter),
		PlanBefore:     nullString(e.PlanBefore),
		PlanAfter:      nullString(e.PlanAfter),
		Amount:         e.Amount,
		ProcessedBy:    e.ProcessedBy,
		AdminID:        nullInt64(e.AdminID),
	}

	if err := r.logs.CreateWithTx(ctx, tx, row); err != nil {
		return err
	}

	r.logger.Info("lifecycle event recorded",
		zap.Int64("subscription_id", e.SubscriptionID),
		zap.String("action", string(e.Action)),
		zap.String("status_after", e.StatusAfter),
		zap.Float64("amount", e.Amount))

	// The feed is advisory: the broadcast goes out before the caller's
	// transaction commits, so a rollback can surface an event whose log row
	// never landed. Dashboards must treat the stream as a hint and read the
	// log table for the record.
	if r.feed != nil {
		r.feed.BroadcastEvent(feedEvent{
			Type:           "subscription_event",
			SubscriptionID: e.SubscriptionID,
			UserUUID:       e.UserUUID,
			ServiceID:      e.ServiceID,
			Action:         string(e.Action),
			Title:          e.Title,
			StatusBefore:   e.StatusBefore,
			StatusAfter:    e.StatusAfter,
			Amount:         e.Amount,
			OccurredAt:     time.Now(),
		})
	}

	return nil
}

type feedEvent struct {
	Type           string    `json:"type"`
	SubscriptionID int64     `json:"subscription_id"`
	UserUUID       string    `json:"user_uuid"`
	ServiceID      int64     `json:"service_id"`
	Action         string    `json:"action"`
	Title          string    `json:"title"`
	StatusBefore   string    `json:"status_before,omitempty"`
	StatusAfter    string    `json:"status_after,omitempty"`
	Amount         float64   `json:"amount"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(n int64) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}
