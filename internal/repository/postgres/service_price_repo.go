package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-admin/internal/domain/catalog"
	xerrors "service-admin/internal/pkg/errors"
)

type ServicePriceRepository struct {
	db *pgxpool.Pool
}

func NewServicePriceRepository(db *pgxpool.Pool) *ServicePriceRepository {
	return &ServicePriceRepository{db: db}
}

func (r *ServicePriceRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *catalog.Price) error {
	query := `
		INSERT INTO service_prices (service_id, name, price, is_default, enable, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		p.ServiceID, p.Name, p.Price, p.IsDefault, p.Enable, p.SortOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create service price: %w", err)
	}

	return nil
}

func (r *ServicePriceRepository) FindByID(ctx context.Context, id int64) (*catalog.Price, error) {
	query := `
		SELECT id, service_id, name, price, is_default, enable, sort_order, created_at, updated_at
		FROM service_prices
		WHERE id = $1
	`

	var p catalog.Price
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ServiceID, &p.Name, &p.Price, &p.IsDefault, &p.Enable,
		&p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service price: %w", err)
	}

	return &p, nil
}

// FindByIDForUpdate locks the price row for the lifetime of tx.
func (r *ServicePriceRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*catalog.Price, error) {
	query := `
		SELECT id, service_id, name, price, is_default, enable, sort_order, created_at, updated_at
		FROM service_prices
		WHERE id = $1
		FOR UPDATE
	`

	var p catalog.Price
	err := tx.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ServiceID, &p.Name, &p.Price, &p.IsDefault, &p.Enable,
		&p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service price: %w", err)
	}

	return &p, nil
}

func (r *ServicePriceRepository) ListByService(ctx context.Context, serviceID int64) ([]catalog.Price, error) {
	query := `
		SELECT id, service_id, name, price, is_default, enable, sort_order, created_at, updated_at
		FROM service_prices
		WHERE service_id = $1
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service prices: %w", err)
	}
	defer rows.Close()

	prices := []catalog.Price{}
	for rows.Next() {
		var p catalog.Price
		err := rows.Scan(
			&p.ID, &p.ServiceID, &p.Name, &p.Price, &p.IsDefault, &p.Enable,
			&p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service price: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read service prices: %w", err)
	}

	return prices, nil
}

// CountByServiceWithTx counts the remaining price options of a service. The
// last-option delete guard reads this under the row lock.
func (r *ServicePriceRepository) CountByServiceWithTx(ctx context.Context, tx pgx.Tx, serviceID int64) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM service_prices WHERE service_id = $1`, serviceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count service prices: %w", err)
	}

	return count, nil
}

func (r *ServicePriceRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, p *catalog.Price) error {
	query := `
		UPDATE service_prices SET
			name = $1, price = $2, is_default = $3, enable = $4, sort_order = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := tx.Exec(ctx, query,
		p.Name, p.Price, p.IsDefault, p.Enable, p.SortOrder, time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service price: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ClearDefaultWithTx drops the default flag from every price of a service.
// Called before promoting a new default so exactly one row carries it.
func (r *ServicePriceRepository) ClearDefaultWithTx(ctx context.Context, tx pgx.Tx, serviceID int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE service_prices SET is_default = FALSE, updated_at = NOW() WHERE service_id = $1 AND is_default = TRUE`,
		serviceID)
	if err != nil {
		return fmt.Errorf("failed to clear default price: %w", err)
	}

	return nil
}

// SetDefaultWithTx marks one price as the service default.
func (r *ServicePriceRepository) SetDefaultWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	result, err := tx.Exec(ctx,
		`UPDATE service_prices SET is_default = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set default price: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// FindFirstByServiceWithTx returns the enabled price that should inherit the
// default flag when the current default is deleted, excluding the row being
// removed.
func (r *ServicePriceRepository) FindFirstByServiceWithTx(ctx context.Context, tx pgx.Tx, serviceID, excludeID int64) (*catalog.Price, error) {
	query := `
		SELECT id, service_id, name, price, is_default, enable, sort_order, created_at, updated_at
		FROM service_prices
		WHERE service_id = $1 AND id <> $2 AND enable = TRUE
		ORDER BY sort_order ASC, id ASC
		LIMIT 1
	`

	var p catalog.Price
	err := tx.QueryRow(ctx, query, serviceID, excludeID).Scan(
		&p.ID, &p.ServiceID, &p.Name, &p.Price, &p.IsDefault, &p.Enable,
		&p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service price: %w", err)
	}

	return &p, nil
}

func (r *ServicePriceRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	result, err := tx.Exec(ctx, `DELETE FROM service_prices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service price: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
