// Package planadmin manages the plan catalog behind the lifecycle
// operations.
package planadmin

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"service-admin/internal/domain/plan"
)

type PlanStore interface {
	Create(ctx context.Context, p *plan.Plan) error
	FindByID(ctx context.Context, id int64) (*plan.Plan, error)
	List(ctx context.Context, filters plan.ListFilters) (*plan.ListResponse, error)
	Update(ctx context.Context, p *plan.Plan) error
	Activate(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
}

type Service struct {
	plans  PlanStore
	logger *zap.Logger
}

func NewService(plans PlanStore, logger *zap.Logger) *Service {
	return &Service{plans: plans, logger: logger}
}

func (s *Service) Create(ctx context.Context, req *plan.CreatePlanRequest) (*plan.Plan, error) {
	p := &plan.Plan{
		ServiceID: req.ServiceID,
		PlanCode:  req.PlanCode,
		PlanName:  req.PlanName,

		MonthlyPrice:   req.MonthlyPrice,
		QuarterlyPrice: req.QuarterlyPrice,
		YearlyPrice:    req.YearlyPrice,
		LifetimePrice:  req.LifetimePrice,

		MonthlyAvailable:   req.MonthlyAvailable,
		QuarterlyAvailable: req.QuarterlyAvailable,
		YearlyAvailable:    req.YearlyAvailable,
		LifetimeAvailable:  req.LifetimeAvailable,

		HasTrial:        req.HasTrial,
		TrialPeriodDays: req.TrialPeriodDays,
		SetupFee:        req.SetupFee,

		Features:       req.Features,
		UpgradePaths:   req.UpgradePaths,
		DowngradePaths: req.DowngradePaths,

		ImmediateUpgrade:   req.ImmediateUpgrade,
		ImmediateDowngrade: req.ImmediateDowngrade,

		IsActive:  true,
		SortOrder: req.SortOrder,
	}
	if req.Description != "" {
		p.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if p.UpgradePaths == nil {
		p.UpgradePaths = []string{}
	}
	if p.DowngradePaths == nil {
		p.DowngradePaths = []string{}
	}

	if err := s.plans.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("plan created",
		zap.Int64("plan_id", p.ID),
		zap.Int64("service_id", p.ServiceID),
		zap.String("plan_code", p.PlanCode))

	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*plan.Plan, error) {
	return s.plans.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filters plan.ListFilters) (*plan.ListResponse, error) {
	return s.plans.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id int64, req *plan.UpdatePlanRequest) (*plan.Plan, error) {
	p, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PlanName != nil {
		p.PlanName = *req.PlanName
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.MonthlyPrice != nil {
		p.MonthlyPrice = *req.MonthlyPrice
	}
	if req.QuarterlyPrice != nil {
		p.QuarterlyPrice = *req.QuarterlyPrice
	}
	if req.YearlyPrice != nil {
		p.YearlyPrice = *req.YearlyPrice
	}
	if req.LifetimePrice != nil {
		p.LifetimePrice = *req.LifetimePrice
	}
	if req.MonthlyAvailable != nil {
		p.MonthlyAvailable = *req.MonthlyAvailable
	}
	if req.QuarterlyAvailable != nil {
		p.QuarterlyAvailable = *req.QuarterlyAvailable
	}
	if req.YearlyAvailable != nil {
		p.YearlyAvailable = *req.YearlyAvailable
	}
	if req.LifetimeAvailable != nil {
		p.LifetimeAvailable = *req.LifetimeAvailable
	}
	if req.HasTrial != nil {
		p.HasTrial = *req.HasTrial
	}
	if req.TrialPeriodDays != nil {
		p.TrialPeriodDays = *req.TrialPeriodDays
	}
	if req.SetupFee != nil {
		p.SetupFee = *req.SetupFee
	}
	if req.Features != nil {
		p.Features = req.Features
	}
	if req.UpgradePaths != nil {
		p.UpgradePaths = req.UpgradePaths
	}
	if req.DowngradePaths != nil {
		p.DowngradePaths = req.DowngradePaths
	}
	if req.ImmediateUpgrade != nil {
		p.ImmediateUpgrade = *req.ImmediateUpgrade
	}
	if req.ImmediateDowngrade != nil {
		p.ImmediateDowngrade = *req.ImmediateDowngrade
	}
	if req.SortOrder != nil {
		p.SortOrder = *req.SortOrder
	}

	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("plan updated", zap.Int64("plan_id", p.ID))

	return p, nil
}

// Activate puts a previously deactivated plan back on sale.
func (s *Service) Activate(ctx context.Context, id int64) error {
	if err := s.plans.Activate(ctx, id); err != nil {
		return err
	}

	s.logger.Info("plan activated", zap.Int64("plan_id", id))

	return nil
}

// Delete deactivates the plan. Active subscriptions keep their snapshot and
// keep renewing on it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.plans.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info("plan deactivated", zap.Int64("plan_id", id))

	return nil
}
