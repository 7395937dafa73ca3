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
	"github.com/lib/pq"

	"service-admin/internal/domain/plan"
	xerrors "service-admin/internal/pkg/errors"
)

const planColumns = `
	id, service_id, plan_code, plan_name, description,
	monthly_price, quarterly_price, yearly_price, lifetime_price,
	monthly_available, quarterly_available, yearly_available, lifetime_available,
	has_trial, trial_period_days, setup_fee,
	features, upgrade_paths, downgrade_paths,
	immediate_upgrade, immediate_downgrade,
	is_active, sort_order, created_at, updated_at`

type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row pgx.Row) (*plan.Plan, error) {
	var p plan.Plan
	var featuresJSON []byte
	var upgradePaths, downgradePaths []string

	err := row.Scan(
		&p.ID, &p.ServiceID, &p.PlanCode, &p.PlanName, &p.Description,
		&p.MonthlyPrice, &p.QuarterlyPrice, &p.YearlyPrice, &p.LifetimePrice,
		&p.MonthlyAvailable, &p.QuarterlyAvailable, &p.YearlyAvailable, &p.LifetimeAvailable,
		&p.HasTrial, &p.TrialPeriodDays, &p.SetupFee,
		&featuresJSON, pq.Array(&upgradePaths), pq.Array(&downgradePaths),
		&p.ImmediateUpgrade, &p.ImmediateDowngrade,
		&p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(featuresJSON) > 0 {
		json.Unmarshal(featuresJSON, &p.Features)
	}
	p.UpgradePaths = upgradePaths
	p.DowngradePaths = downgradePaths

	return &p, nil
}

func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO subscription_plans (
			service_id, plan_code, plan_name, description,
			monthly_price, quarterly_price, yearly_price, lifetime_price,
			monthly_available, quarterly_available, yearly_available, lifetime_available,
			has_trial, trial_period_days, setup_fee,
			features, upgrade_paths, downgrade_paths,
			immediate_upgrade, immediate_downgrade,
			is_active, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at, updated_at
	`

	var featuresJSON []byte
	var err error

	if p.Features != nil {
		featuresJSON, err = json.Marshal(p.Features)
		if err != nil {
			return fmt.Errorf("failed to marshal features: %w", err)
		}
	}

	err = r.db.QueryRow(
		ctx, query,
		p.ServiceID, p.PlanCode, p.PlanName, p.Description,
		p.MonthlyPrice, p.QuarterlyPrice, p.YearlyPrice, p.LifetimePrice,
		p.MonthlyAvailable, p.QuarterlyAvailable, p.YearlyAvailable, p.LifetimeAvailable,
		p.HasTrial, p.TrialPeriodDays, p.SetupFee,
		featuresJSON, pq.Array(p.UpgradePaths), pq.Array(p.DowngradePaths),
		p.ImmediateUpgrade, p.ImmediateDowngrade,
		p.IsActive, p.SortOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`

	p, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return p, nil
}

// FindByCode resolves an active plan by service and plan code.
func (r *PlanRepository) FindByCode(ctx context.Context, serviceID int64, planCode string) (*plan.Plan, error) {
	query := `SELECT ` + planColumns + `
		FROM subscription_plans
		WHERE service_id = $1 AND plan_code = $2 AND is_active = TRUE`

	p, err := scanPlan(r.db.QueryRow(ctx, query, serviceID, planCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return p, nil
}

func (r *PlanRepository) List(ctx context.Context, filters plan.ListFilters) (*plan.ListResponse, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf("service_id = $%d", argPos))
		args = append(args, *filters.ServiceID)
		argPos++
	}
	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *filters.IsActive)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM subscription_plans WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count plans: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM subscription_plans WHERE %s ORDER BY sort_order ASC, id ASC LIMIT $%d OFFSET $%d`,
		planColumns, where, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []plan.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plans: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &plan.ListResponse{
		Plans:      plans,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *PlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
		UPDATE subscription_plans SET
			plan_name = $1, description = $2,
			monthly_price = $3, quarterly_price = $4, yearly_price = $5, lifetime_price = $6,
			monthly_available = $7, quarterly_available = $8, yearly_available = $9, lifetime_available = $10,
			has_trial = $11, trial_period_days = $12, setup_fee = $13,
			features = $14, upgrade_paths = $15, downgrade_paths = $16,
			immediate_upgrade = $17, immediate_downgrade = $18,
			is_active = $19, sort_order = $20, updated_at = $21
		WHERE id = $22
	`

	var featuresJSON []byte
	var err error

	if p.Features != nil {
		featuresJSON, err = json.Marshal(p.Features)
		if err != nil {
			return fmt.Errorf("failed to marshal features: %w", err)
		}
	}

	result, err := r.db.Exec(
		ctx, query,
		p.PlanName, p.Description,
		p.MonthlyPrice, p.QuarterlyPrice, p.YearlyPrice, p.LifetimePrice,
		p.MonthlyAvailable, p.QuarterlyAvailable, p.YearlyAvailable, p.LifetimeAvailable,
		p.HasTrial, p.TrialPeriodDays, p.SetupFee,
		featuresJSON, pq.Array(p.UpgradePaths), pq.Array(p.DowngradePaths),
		p.ImmediateUpgrade, p.ImmediateDowngrade,
		p.IsActive, p.SortOrder, time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrPlanNotFound
	}

	return nil
}

// Activate puts a deactivated plan back on sale.
func (r *PlanRepository) Activate(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE subscription_plans SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to activate plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrPlanNotFound
	}

	return nil
}

// Deactivate soft-deletes a plan. Existing subscriptions keep their snapshot.
func (r *PlanRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE subscription_plans SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrPlanNotFound
	}

	return nil
}
