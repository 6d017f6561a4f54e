package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const catalogColumns = `id, name, description, category, required_fields, is_active,
               estimated_resolution_hours, auto_assign_to_department, created_at`

// CatalogRepository defines persistence access for service catalog items.
type CatalogRepository interface {
	Create(ctx context.Context, item *domain.ServiceCatalogItem) error
	Update(ctx context.Context, item *domain.ServiceCatalogItem) error
	GetByID(ctx context.Context, id string) (*domain.ServiceCatalogItem, error)
	GetByName(ctx context.Context, name string) (*domain.ServiceCatalogItem, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ServiceCatalogItem, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository instantiates repository.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) Create(ctx context.Context, item *domain.ServiceCatalogItem) error {
	const query = `
        INSERT INTO service_catalog_items (name, description, category, required_fields,
            is_active, estimated_resolution_hours, auto_assign_to_department)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		item.Name,
		item.Description,
		item.Category,
		item.RequiredFields,
		item.IsActive,
		item.EstimatedResolutionHours,
		item.AutoAssignToDepartment,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *catalogRepository) Update(ctx context.Context, item *domain.ServiceCatalogItem) error {
	const query = `
        UPDATE service_catalog_items SET name=$1, description=$2, category=$3, required_fields=$4,
            is_active=$5, estimated_resolution_hours=$6, auto_assign_to_department=$7
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		item.Name,
		item.Description,
		item.Category,
		item.RequiredFields,
		item.IsActive,
		item.EstimatedResolutionHours,
		item.AutoAssignToDepartment,
		item.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *catalogRepository) GetByID(ctx context.Context, id string) (*domain.ServiceCatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM service_catalog_items WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *catalogRepository) GetByName(ctx context.Context, name string) (*domain.ServiceCatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM service_catalog_items WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *catalogRepository) List(ctx context.Context, activeOnly bool) ([]domain.ServiceCatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM service_catalog_items`
	if activeOnly {
		query += ` WHERE is_active=true`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceCatalogItem
	for rows.Next() {
		var item domain.ServiceCatalogItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Category,
			&item.RequiredFields,
			&item.IsActive,
			&item.EstimatedResolutionHours,
			&item.AutoAssignToDepartment,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *catalogRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ServiceCatalogItem, error) {
	var item domain.ServiceCatalogItem
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Category,
		&item.RequiredFields,
		&item.IsActive,
		&item.EstimatedResolutionHours,
		&item.AutoAssignToDepartment,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
