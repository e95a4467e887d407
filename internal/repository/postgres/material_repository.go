package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
)

type materialRepository struct {
	db *DB
}

// NewMaterialRepository returns the postgres-backed material registry.
func NewMaterialRepository(db *DB) repository.MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) GetByID(ctx context.Context, id int64) (*domain.Material, error) {
	query := `
		SELECT id, code, name, unit, unit_cost, current_stock,
		       critical_stock, reorder_level, max_level,
		       lead_time_days, lead_time_variability,
		       created_at, updated_at
		FROM materials
		WHERE id = $1
	`

	var m domain.Material
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error getting material %d: %w", id, err)
	}

	return &m, nil
}

func (r *materialRepository) List(ctx context.Context) ([]domain.Material, error) {
	query := `
		SELECT id, code, name, unit, unit_cost, current_stock,
		       critical_stock, reorder_level, max_level,
		       lead_time_days, lead_time_variability,
		       created_at, updated_at
		FROM materials
		ORDER BY id
	`

	var materials []domain.Material
	if err := r.db.SelectContext(ctx, &materials, query); err != nil {
		return nil, fmt.Errorf("error listing materials: %w", err)
	}

	return materials, nil
}

type productRepository struct {
	db *DB
}

// NewProductRepository returns the postgres-backed product catalog.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, code, name, stocked, daily_output
		FROM products
		ORDER BY id
	`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}

	return products, nil
}
