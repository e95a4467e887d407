package postgres

import (
	"context"
	"fmt"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
)

type bomRepository struct {
	db *DB
}

// NewBOMRepository returns the postgres-backed bill-of-materials store.
func NewBOMRepository(db *DB) repository.BOMRepository {
	return &bomRepository{db: db}
}

func (r *bomRepository) LinesForMaterial(ctx context.Context, materialID int64) ([]domain.BOMLine, error) {
	query := `
		SELECT product_id, material_id, quantity_per_unit
		FROM bom_lines
		WHERE material_id = $1
		ORDER BY product_id
	`

	var lines []domain.BOMLine
	if err := r.db.SelectContext(ctx, &lines, query, materialID); err != nil {
		return nil, fmt.Errorf("error getting BOM lines for material %d: %w", materialID, err)
	}

	return lines, nil
}

func (r *bomRepository) LinesForProduct(ctx context.Context, productID int64) ([]domain.BOMLine, error) {
	query := `
		SELECT product_id, material_id, quantity_per_unit
		FROM bom_lines
		WHERE product_id = $1
		ORDER BY material_id
	`

	var lines []domain.BOMLine
	if err := r.db.SelectContext(ctx, &lines, query, productID); err != nil {
		return nil, fmt.Errorf("error getting BOM lines for product %d: %w", productID, err)
	}

	return lines, nil
}
