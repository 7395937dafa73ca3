// Package lifecycle implements the subscription lifecycle operations:
// subscribe, renew, extend, plan changes, refunds and status transitions.
// Every mutating operation runs in a single transaction and records an audit
// event before committing.
package lifecycle

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"service-admin/internal/audit"
	"service-admin/internal/domain/payment"
	"service-admin/internal/domain/plan"
	"service-admin/internal/domain/subscription"
)

// currency applied to every payment row.
const currency = "KRW"

// Order reference prefixes by operation.
const (
	orderPrefixSubscribe = "SUB-"
	orderPrefixRenewal   = "REN-"
	orderPrefixExtension = "EXT-"
	orderPrefixUpgrade   = "UPG-"
)

type SubscriptionStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error
	FindByID(ctx context.Context, id int64) (*subscription.Subscription, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*subscription.Subscription, error)
	FindActiveByUserAndService(ctx context.Context, userUUID string, serviceID int64) (*subscription.Subscription, error)
	UpdateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error
	List(ctx context.Context, filters subscription.ListFilters) (*subscription.ListResponse, error)
}

type PlanStore interface {
	FindByID(ctx context.Context, id int64) (*plan.Plan, error)
	FindByCode(ctx context.Context, serviceID int64, planCode string) (*plan.Plan, error)
}

type PaymentStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*payment.Payment, error)
	ListBySubscription(ctx context.Context, subscriptionID int64) ([]payment.Payment, error)
	ListCompletedBySubscriptionWithTx(ctx context.Context, tx pgx.Tx, subscriptionID int64) ([]payment.Payment, error)
	MarkCompletedWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error
	UpdateRefundWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error
}

type LogStore interface {
	List(ctx context.Context, filters subscription.LogListFilters) (*subscription.LogListResponse, error)
}

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	subs     SubscriptionStore
	plans    PlanStore
	payments PaymentStore
	logs     LogStore
	db       TxBeginner
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewService(
	subs SubscriptionStore,
	plans PlanStore,
	payments PaymentStore,
	logs LogStore,
	db TxBeginner,
	recorder audit.Recorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		subs:     subs,
		plans:    plans,
		payments: payments,
		logs:     logs,
		db:       db,
		recorder: recorder,
		logger:   logger,
	}
}

// Get returns one subscription.
func (s *Service) Get(ctx context.Context, id int64) (*subscription.Subscription, error) {
	return s.subs.FindByID(ctx, id)
}

// List returns a filtered page of subscriptions.
func (s *Service) List(ctx context.Context, filters subscription.ListFilters) (*subscription.ListResponse, error) {
	return s.subs.List(ctx, filters)
}

// Logs returns a filtered page of audit records.
func (s *Service) Logs(ctx context.Context, filters subscription.LogListFilters) (*subscription.LogListResponse, error) {
	return s.logs.List(ctx, filters)
}

// Payments returns the payment ledger of one subscription.
func (s *Service) Payments(ctx context.Context, subscriptionID int64) ([]payment.Payment, error) {
	if _, err := s.subs.FindByID(ctx, subscriptionID); err != nil {
		return nil, err
	}
	return s.payments.ListBySubscription(ctx, subscriptionID)
}

func orderRef(prefix string) string {
	return prefix + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
