package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-admin/internal/domain/subscription"
)

type SubscriptionLogRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionLogRepository(db *pgxpool.Pool) *SubscriptionLogRepository {
	return &SubscriptionLogRepository{db: db}
}

// CreateWithTx appends one audit row within the same transaction as the
// change it records.
func (r *SubscriptionLogRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, log *subscription.Log) error {
	query := `
		INSERT INTO subscription_logs (
			subscription_id, user_uuid, service_id,
			action, action_title, action_description,
			status_before, status_after, plan_before, plan_after,
			amount, processed_by, admin_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		log.SubscriptionID, log.UserUUID, log.ServiceID,
		log.Action, log.ActionTitle, log.ActionDesc,
		log.StatusBefore, log.StatusAfter, log.PlanBefore, log.PlanAfter,
		log.Amount, log.ProcessedBy, log.AdminID,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription log: %w", err)
	}

	return nil
}

// List returns a filtered, paginated page of audit rows, newest first.
func (r *SubscriptionLogRepository) List(ctx context.Context, filters subscription.LogListFilters) (*subscription.LogListResponse, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.SubscriptionID != nil {
		conditions = append(conditions, fmt.Sprintf("subscription_id = $%d", argPos))
		args = append(args, *filters.SubscriptionID)
		argPos++
	}
	if filters.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf("service_id = $%d", argPos))
		args = append(args, *filters.ServiceID)
		argPos++
	}
	if filters.Action != nil {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argPos))
		args = append(args, *filters.Action)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM subscription_logs WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count subscription logs: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	query := fmt.Sprintf(`
		SELECT id, subscription_id, user_uuid, service_id,
		       action, action_title, action_description,
		       status_before, status_after, plan_before, plan_after,
		       amount, processed_by, admin_id, created_at
		FROM subscription_logs
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription logs: %w", err)
	}
	defer rows.Close()

	logs := []subscription.Log{}
	for rows.Next() {
		var log subscription.Log
		err := rows.Scan(
			&log.ID, &log.SubscriptionID, &log.UserUUID, &log.ServiceID,
			&log.Action, &log.ActionTitle, &log.ActionDesc,
			&log.StatusBefore, &log.StatusAfter, &log.PlanBefore, &log.PlanAfter,
			&log.Amount, &log.ProcessedBy, &log.AdminID, &log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscription logs: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &subscription.LogListResponse{
		Logs:       logs,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
