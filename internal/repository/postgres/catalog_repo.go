package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-admin/internal/domain/catalog"
	xerrors "service-admin/internal/pkg/errors"
)

type ServiceRepository struct {
	db *pgxpool.Pool
}

func NewServiceRepository(db *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *catalog.Service) error {
	query := `
		INSERT INTO services (enable, title, slug, description, category_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		s.Enable, s.Title, s.Slug, s.Description, s.CategoryID, s.SortOrder,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create service: %w", err)
	}

	return nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id int64) (*catalog.Service, error) {
	query := `
		SELECT id, enable, title, slug, description, category_id, sort_order, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var s catalog.Service
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Enable, &s.Title, &s.Slug, &s.Description, &s.CategoryID,
		&s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &s, nil
}

func (r *ServiceRepository) List(ctx context.Context, filters catalog.ServiceListFilters) (*catalog.ServiceListResponse, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argPos))
		args = append(args, *filters.CategoryID)
		argPos++
	}
	if filters.Enable != nil {
		conditions = append(conditions, fmt.Sprintf("enable = $%d", argPos))
		args = append(args, *filters.Enable)
		argPos++
	}
	if filters.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR slug ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Keyword+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM services WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count services: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := fmt.Sprintf(`
		SELECT id, enable, title, slug, description, category_id, sort_order, created_at, updated_at
		FROM services
		WHERE %s
		ORDER BY sort_order ASC, id ASC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	services := []catalog.Service{}
	for rows.Next() {
		var s catalog.Service
		err := rows.Scan(
			&s.ID, &s.Enable, &s.Title, &s.Slug, &s.Description, &s.CategoryID,
			&s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read services: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &catalog.ServiceListResponse{
		Services:   services,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *catalog.Service) error {
	query := `
		UPDATE services SET
			enable = $1, title = $2, slug = $3, description = $4,
			category_id = $5, sort_order = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.Exec(ctx, query,
		s.Enable, s.Title, s.Slug, s.Description, s.CategoryID, s.SortOrder, time.Now(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

type CategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	query := `
		INSERT INTO categories (enable, name, slug, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, c.Enable, c.Name, c.Slug, c.SortOrder).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*catalog.Category, error) {
	query := `
		SELECT id, enable, name, slug, sort_order, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	var c catalog.Category
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Enable, &c.Name, &c.Slug, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]catalog.Category, error) {
	query := `
		SELECT id, enable, name, slug, sort_order, created_at, updated_at
		FROM categories
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Enable, &c.Name, &c.Slug, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	query := `
		UPDATE categories SET enable = $1, name = $2, slug = $3, sort_order = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query, c.Enable, c.Name, c.Slug, c.SortOrder, time.Now(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
