// Package catalog manages services, categories and their one-off price
// options.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-admin/internal/domain/catalog"
	xerrors "service-admin/internal/pkg/errors"
)

type ServiceStore interface {
	Create(ctx context.Context, s *catalog.Service) error
	FindByID(ctx context.Context, id int64) (*catalog.Service, error)
	List(ctx context.Context, filters catalog.ServiceListFilters) (*catalog.ServiceListResponse, error)
	Update(ctx context.Context, s *catalog.Service) error
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	Create(ctx context.Context, c *catalog.Category) error
	FindByID(ctx context.Context, id int64) (*catalog.Category, error)
	ListAll(ctx context.Context) ([]catalog.Category, error)
	Update(ctx context.Context, c *catalog.Category) error
	Delete(ctx context.Context, id int64) error
}

// PriceStore is the slice of the price repository the service needs. Price
// operations run in transactions because the default flag and the last-option
// guard span multiple rows.
type PriceStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, p *catalog.Price) error
	FindByID(ctx context.Context, id int64) (*catalog.Price, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*catalog.Price, error)
	ListByService(ctx context.Context, serviceID int64) ([]catalog.Price, error)
	CountByServiceWithTx(ctx context.Context, tx pgx.Tx, serviceID int64) (int64, error)
	UpdateWithTx(ctx context.Context, tx pgx.Tx, p *catalog.Price) error
	ClearDefaultWithTx(ctx context.Context, tx pgx.Tx, serviceID int64) error
	SetDefaultWithTx(ctx context.Context, tx pgx.Tx, id int64) error
	FindFirstByServiceWithTx(ctx context.Context, tx pgx.Tx, serviceID, excludeID int64) (*catalog.Price, error)
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	services   ServiceStore
	categories CategoryStore
	prices     PriceStore
	db         TxBeginner
	logger     *zap.Logger
}

func NewService(
	services ServiceStore,
	categories CategoryStore,
	prices PriceStore,
	db TxBeginner,
	logger *zap.Logger,
) *Service {
	return &Service{
		services:   services,
		categories: categories,
		prices:     prices,
		db:         db,
		logger:     logger,
	}
}

func (s *Service) CreateService(ctx context.Context, req *catalog.CreateServiceRequest) (*catalog.Service, error) {
	svc := &catalog.Service{
		Enable:    req.Enable,
		Title:     req.Title,
		Slug:      req.Slug,
		SortOrder: req.SortOrder,
	}
	if req.Description != "" {
		svc.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.CategoryID != nil {
		svc.CategoryID = sql.NullInt64{Int64: *req.CategoryID, Valid: true}
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.logger.Info("service created", zap.Int64("service_id", svc.ID), zap.String("slug", svc.Slug))

	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id int64) (*catalog.Service, error) {
	return s.services.FindByID(ctx, id)
}

func (s *Service) ListServices(ctx context.Context, filters catalog.ServiceListFilters) (*catalog.ServiceListResponse, error) {
	return s.services.List(ctx, filters)
}

func (s *Service) UpdateService(ctx context.Context, id int64, req *catalog.UpdateServiceRequest) (*catalog.Service, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		svc.Title = *req.Title
	}
	if req.Slug != nil {
		svc.Slug = *req.Slug
	}
	if req.Description != nil {
		svc.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.CategoryID != nil {
		svc.CategoryID = sql.NullInt64{Int64: *req.CategoryID, Valid: true}
	}
	if req.Enable != nil {
		svc.Enable = *req.Enable
	}
	if req.SortOrder != nil {
		svc.SortOrder = *req.SortOrder
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, id int64) error {
	return s.services.Delete(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, req *catalog.CreateCategoryRequest) (*catalog.Category, error) {
	c := &catalog.Category{
		Enable:    req.Enable,
		Name:      req.Name,
		Slug:      req.Slug,
		SortOrder: req.SortOrder,
	}

	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.ListAll(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req *catalog.UpdateCategoryRequest) (*catalog.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Slug != nil {
		c.Slug = *req.Slug
	}
	if req.Enable != nil {
		c.Enable = *req.Enable
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

// CreatePrice adds a price option. The first option of a service becomes the
// default automatically; a new default demotes the previous one.
func (s *Service) CreatePrice(ctx context.Context, serviceID int64, req *catalog.CreatePriceRequest) (*catalog.Price, error) {
	if _, err := s.services.FindByID(ctx, serviceID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	count, err := s.prices.CountByServiceWithTx(ctx, tx, serviceID)
	if err != nil {
		return nil, err
	}

	p := &catalog.Price{
		ServiceID: serviceID,
		Name:      req.Name,
		Price:     req.Price,
		IsDefault: req.IsDefault || count == 0,
		Enable:    req.Enable,
		SortOrder: req.SortOrder,
	}

	if p.IsDefault {
		if err := s.prices.ClearDefaultWithTx(ctx, tx, serviceID); err != nil {
			return nil, err
		}
	}
	if err := s.prices.CreateWithTx(ctx, tx, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("service price created",
		zap.Int64("price_id", p.ID),
		zap.Int64("service_id", serviceID),
		zap.Bool("is_default", p.IsDefault))

	return p, nil
}

func (s *Service) ListPrices(ctx context.Context, serviceID int64) ([]catalog.Price, error) {
	if _, err := s.services.FindByID(ctx, serviceID); err != nil {
		return nil, err
	}
	return s.prices.ListByService(ctx, serviceID)
}

func (s *Service) UpdatePrice(ctx context.Context, id int64, req *catalog.UpdatePriceRequest) (*catalog.Price, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.prices.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Enable != nil {
		p.Enable = *req.Enable
	}
	if req.SortOrder != nil {
		p.SortOrder = *req.SortOrder
	}
	if req.IsDefault != nil && *req.IsDefault && !p.IsDefault {
		if err := s.prices.ClearDefaultWithTx(ctx, tx, p.ServiceID); err != nil {
			return nil, err
		}
		p.IsDefault = true
	}

	if err := s.prices.UpdateWithTx(ctx, tx, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return p, nil
}

// DeletePrice removes a price option. A service never loses its last option,
// and deleting the default promotes the next option in sort order.
func (s *Service) DeletePrice(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.prices.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	count, err := s.prices.CountByServiceWithTx(ctx, tx, p.ServiceID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return xerrors.ErrLastPriceOption
	}

	if err := s.prices.DeleteWithTx(ctx, tx, id); err != nil {
		return err
	}

	if p.IsDefault {
		// Only enabled options can inherit the default flag. With none
		// left the service simply has no default until one is enabled.
		next, err := s.prices.FindFirstByServiceWithTx(ctx, tx, p.ServiceID, p.ID)
		if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
			return err
		}
		if next != nil {
			if err := s.prices.SetDefaultWithTx(ctx, tx, next.ID); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("service price deleted",
		zap.Int64("price_id", id),
		zap.Int64("service_id", p.ServiceID),
		zap.Bool("was_default", p.IsDefault))

	return nil
}
