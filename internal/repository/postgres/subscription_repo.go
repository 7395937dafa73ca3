package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-admin/internal/domain/subscription"
	xerrors "service-admin/internal/pkg/errors"
)

const subscriptionColumns = `
	id, user_uuid, user_email, user_name, user_shard,
	service_id, plan_id, plan_code, plan_name, plan_price, plan_features,
	billing_cycle, status, started_at, expires_at, next_billing_at,
	auto_renewal, auto_upgrade, pending_plan_code,
	total_paid, refund_amount, refunded_at,
	cancelled_at, cancel_reason, admin_notes,
	created_at, updated_at`

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	var featuresJSON []byte

	err := row.Scan(
		&sub.ID, &sub.UserUUID, &sub.UserEmail, &sub.UserName, &sub.UserShard,
		&sub.ServiceID, &sub.PlanID, &sub.PlanCode, &sub.PlanName, &sub.PlanPrice, &featuresJSON,
		&sub.BillingCycle, &sub.Status, &sub.StartedAt, &sub.ExpiresAt, &sub.NextBillingAt,
		&sub.AutoRenewal, &sub.AutoUpgrade, &sub.PendingPlanCode,
		&sub.TotalPaid, &sub.RefundAmount, &sub.RefundedAt,
		&sub.CancelledAt, &sub.CancelReason, &sub.AdminNotes,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(featuresJSON) > 0 {
		json.Unmarshal(featuresJSON, &sub.PlanFeatures)
	}

	return &sub, nil
}

// CreateWithTx inserts a subscription within a transaction.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			user_uuid, user_email, user_name, user_shard,
			service_id, plan_id, plan_code, plan_name, plan_price, plan_features,
			billing_cycle, status, started_at, expires_at, next_billing_at,
			auto_renewal, auto_upgrade,
			total_paid, refund_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`

	var featuresJSON []byte
	var err error

	if sub.PlanFeatures != nil {
		featuresJSON, err = json.Marshal(sub.PlanFeatures)
		if err != nil {
			return fmt.Errorf("failed to marshal plan features: %w", err)
		}
	}

	err = tx.QueryRow(
		ctx, query,
		sub.UserUUID, sub.UserEmail, sub.UserName, sub.UserShard,
		sub.ServiceID, sub.PlanID, sub.PlanCode, sub.PlanName, sub.PlanPrice, featuresJSON,
		sub.BillingCycle, sub.Status, sub.StartedAt, sub.ExpiresAt, sub.NextBillingAt,
		sub.AutoRenewal, sub.AutoUpgrade,
		sub.TotalPaid, sub.RefundAmount,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// FindByID retrieves a subscription by ID.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return sub, nil
}

// FindByIDForUpdate locks the subscription row for the lifetime of tx.
func (r *SubscriptionRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 FOR UPDATE`

	sub, err := scanSubscription(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return sub, nil
}

// FindActiveByUserAndService returns the live subscription a user holds on a
// service, if any. Used for the duplicate-subscribe guard.
func (r *SubscriptionRepository) FindActiveByUserAndService(ctx context.Context, userUUID string, serviceID int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_uuid = $1 AND service_id = $2
		  AND status IN ('pending', 'trial', 'active', 'suspended')
		ORDER BY created_at DESC
		LIMIT 1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, userUUID, serviceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return sub, nil
}

// UpdateWithTx writes back every mutable field of a subscription.
func (r *SubscriptionRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			plan_id = $1, plan_code = $2, plan_name = $3, plan_price = $4, plan_features = $5,
			billing_cycle = $6, status = $7, started_at = $8, expires_at = $9, next_billing_at = $10,
			auto_renewal = $11, auto_upgrade = $12, pending_plan_code = $13,
			total_paid = $14, refund_amount = $15, refunded_at = $16,
			cancelled_at = $17, cancel_reason = $18, admin_notes = $19,
			updated_at = $20
		WHERE id = $21
	`

	var featuresJSON []byte
	var err error

	if sub.PlanFeatures != nil {
		featuresJSON, err = json.Marshal(sub.PlanFeatures)
		if err != nil {
			return fmt.Errorf("failed to marshal plan features: %w", err)
		}
	}

	result, err := tx.Exec(
		ctx, query,
		sub.PlanID, sub.PlanCode, sub.PlanName, sub.PlanPrice, featuresJSON,
		sub.BillingCycle, sub.Status, sub.StartedAt, sub.ExpiresAt, sub.NextBillingAt,
		sub.AutoRenewal, sub.AutoUpgrade, sub.PendingPlanCode,
		sub.TotalPaid, sub.RefundAmount, sub.RefundedAt,
		sub.CancelledAt, sub.CancelReason, sub.AdminNotes,
		time.Now(), sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// List returns a filtered, paginated page of subscriptions.
func (r *SubscriptionRepository) List(ctx context.Context, filters subscription.ListFilters) (*subscription.ListResponse, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}
	if filters.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf("service_id = $%d", argPos))
		args = append(args, *filters.ServiceID)
		argPos++
	}
	if filters.PlanCode != nil {
		conditions = append(conditions, fmt.Sprintf("plan_code = $%d", argPos))
		args = append(args, *filters.PlanCode)
		argPos++
	}
	if filters.UserUUID != nil {
		conditions = append(conditions, fmt.Sprintf("user_uuid = $%d", argPos))
		args = append(args, *filters.UserUUID)
		argPos++
	}
	if filters.Expiring {
		conditions = append(conditions, "status = 'active' AND expires_at BETWEEN NOW() AND NOW() + INTERVAL '7 days'")
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM subscriptions WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	sortBy := "created_at"
	switch filters.SortBy {
	case "expires_at", "started_at", "total_paid":
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		subscriptionColumns, where, sortBy, sortOrder, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []subscription.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &subscription.ListResponse{
		Subscriptions: subs,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
	}, nil
}
