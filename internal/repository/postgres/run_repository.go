package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/google/uuid"
)

type runRepository struct {
	db *DB
}

// NewRunRepository returns the postgres-backed forecast run tracker.
func NewRunRepository(db *DB) repository.RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *domain.ForecastRun) error {
	query := `
		INSERT INTO forecast_runs (
			id, status, total_materials, processed_materials,
			skipped_materials, started_at, completed_at, error_message
		) VALUES (
			:id, :status, :total_materials, :processed_materials,
			:skipped_materials, :started_at, :completed_at, :error_message
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("error creating forecast run: %w", err)
	}

	return nil
}

func (r *runRepository) Update(ctx context.Context, run *domain.ForecastRun) error {
	query := `
		UPDATE forecast_runs
		SET status = :status,
		    total_materials = :total_materials,
		    processed_materials = :processed_materials,
		    skipped_materials = :skipped_materials,
		    completed_at = :completed_at,
		    error_message = :error_message
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("error updating forecast run: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *runRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ForecastRun, error) {
	query := `
		SELECT id, status, total_materials, processed_materials,
		       skipped_materials, started_at, completed_at, error_message
		FROM forecast_runs
		WHERE id = $1
	`

	var run domain.ForecastRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error getting forecast run %s: %w", id, err)
	}

	return &run, nil
}

func (r *runRepository) Latest(ctx context.Context) (*domain.ForecastRun, error) {
	query := `
		SELECT id, status, total_materials, processed_materials,
		       skipped_materials, started_at, completed_at, error_message
		FROM forecast_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run domain.ForecastRun
	if err := r.db.GetContext(ctx, &run, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error getting latest forecast run: %w", err)
	}

	return &run, nil
}
