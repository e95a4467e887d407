package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository returns the postgres-backed forecast snapshot store.
func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Upsert replaces the material's active snapshot: the previous active row is
// deactivated and the new one inserted inside one transaction, so readers
// never see zero or two active snapshots for a material.
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.ForecastSnapshot) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE forecast_snapshots
			SET is_active = FALSE
			WHERE material_id = $1 AND is_active
		`, snapshot.MaterialID); err != nil {
			return fmt.Errorf("error deactivating snapshot for material %d: %w", snapshot.MaterialID, err)
		}

		query := `
			INSERT INTO forecast_snapshots (
				material_id, forecast_period_start, forecast_period_end,
				daily_usage, forecasted_usage, current_stock, projected_stock,
				days_until_stockout, status, confidence_score,
				confidence_upper, confidence_lower, method, is_active, created_at
			) VALUES (
				:material_id, :forecast_period_start, :forecast_period_end,
				:daily_usage, :forecasted_usage, :current_stock, :projected_stock,
				:days_until_stockout, :status, :confidence_score,
				:confidence_upper, :confidence_lower, :method, TRUE, :created_at
			) RETURNING id
		`

		rows, err := tx.NamedQuery(query, snapshot)
		if err != nil {
			return fmt.Errorf("error inserting snapshot for material %d: %w", snapshot.MaterialID, err)
		}
		defer rows.Close()

		if rows.Next() {
			if err := rows.Scan(&snapshot.ID); err != nil {
				return fmt.Errorf("error scanning snapshot id: %w", err)
			}
		}
		snapshot.IsActive = true

		return rows.Err()
	})
}

func (r *snapshotRepository) GetActive(ctx context.Context, materialID int64) (*domain.ForecastSnapshot, error) {
	query := `
		SELECT id, material_id, forecast_period_start, forecast_period_end,
		       daily_usage, forecasted_usage, current_stock, projected_stock,
		       days_until_stockout, status, confidence_score,
		       confidence_upper, confidence_lower, method, is_active, created_at
		FROM forecast_snapshots
		WHERE material_id = $1 AND is_active
	`

	var snapshot domain.ForecastSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, materialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error getting active snapshot for material %d: %w", materialID, err)
	}

	return &snapshot, nil
}

func (r *snapshotRepository) ListActive(ctx context.Context) ([]domain.ForecastSnapshot, error) {
	query := `
		SELECT id, material_id, forecast_period_start, forecast_period_end,
		       daily_usage, forecasted_usage, current_stock, projected_stock,
		       days_until_stockout, status, confidence_score,
		       confidence_upper, confidence_lower, method, is_active, created_at
		FROM forecast_snapshots
		WHERE is_active
		ORDER BY material_id
	`

	var snapshots []domain.ForecastSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query); err != nil {
		return nil, fmt.Errorf("error listing active snapshots: %w", err)
	}

	return snapshots, nil
}
