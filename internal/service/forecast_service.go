package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/craftline/forecast-backend/internal/cache"
	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/forecast"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrNoForecast is returned when a material has no active snapshot to report
// on, typically because no run has been executed yet.
var ErrNoForecast = errors.New("no active forecast for material")

// ForecastService fronts the engine for the API layer. Reads come from the
// active snapshots with a redis read-through cache, writes (runs) invalidate
// it.
type ForecastService struct {
	engine    *forecast.Engine
	materials repository.MaterialRepository
	snapshots repository.SnapshotRepository
	runs      repository.RunRepository
	cache     cache.ForecastCache
}

func NewForecastService(
	engine *forecast.Engine,
	materials repository.MaterialRepository,
	snapshots repository.SnapshotRepository,
	runs repository.RunRepository,
	forecastCache cache.ForecastCache,
) *ForecastService {
	return &ForecastService{
		engine:    engine,
		materials: materials,
		snapshots: snapshots,
		runs:      runs,
		cache:     forecastCache,
	}
}

// GetSummaries returns one summary per material holding an active snapshot,
// sorted by material code.
func (s *ForecastService) GetSummaries(ctx context.Context) ([]domain.ForecastSummary, error) {
	if cached, ok, err := s.cache.GetSummaries(ctx); err != nil {
		log.Warn().Err(err).Msg("Forecast summary cache read failed, falling back to store")
	} else if ok {
		return cached, nil
	}

	snapshots, err := s.snapshots.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active snapshots: %w", err)
	}

	summaries := make([]domain.ForecastSummary, 0, len(snapshots))
	for _, snapshot := range snapshots {
		material, err := s.materials.GetByID(ctx, snapshot.MaterialID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.Warn().Int64("material_id", snapshot.MaterialID).
					Msg("Active snapshot references unknown material, skipping")
				continue
			}
			return nil, fmt.Errorf("loading material %d: %w", snapshot.MaterialID, err)
		}
		summaries = append(summaries, buildSummary(*material, snapshot))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].MaterialCode < summaries[j].MaterialCode
	})

	if err := s.cache.SetSummaries(ctx, summaries); err != nil {
		log.Warn().Err(err).Msg("Forecast summary cache write failed")
	}

	return summaries, nil
}

// GetSummary returns the summary for one material, or ErrNoForecast when it
// has no active snapshot.
func (s *ForecastService) GetSummary(ctx context.Context, materialID int64) (*domain.ForecastSummary, error) {
	if cached, ok, err := s.cache.GetSummary(ctx, materialID); err != nil {
		log.Warn().Err(err).Int64("material_id", materialID).
			Msg("Forecast summary cache read failed, falling back to store")
	} else if ok {
		return cached, nil
	}

	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoForecast
		}
		return nil, fmt.Errorf("loading material %d: %w", materialID, err)
	}

	snapshot, err := s.snapshots.GetActive(ctx, materialID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoForecast
		}
		return nil, fmt.Errorf("loading active snapshot for material %d: %w", materialID, err)
	}

	summary := buildSummary(*material, *snapshot)
	if err := s.cache.SetSummary(ctx, summary); err != nil {
		log.Warn().Err(err).Int64("material_id", materialID).
			Msg("Forecast summary cache write failed")
	}

	return &summary, nil
}

// GetReplenishmentSchedule builds the urgency-grouped reorder report from
// the active snapshots. Per-material problems are reported alongside the
// schedule rather than failing it.
func (s *ForecastService) GetReplenishmentSchedule(ctx context.Context) (*domain.ReplenishmentSchedule, []domain.Diagnostic, error) {
	return s.engine.Schedule(ctx)
}

// RunForecast executes a full (or targeted) forecast run and drops the
// summary cache so the next read sees the fresh snapshots.
func (s *ForecastService) RunForecast(ctx context.Context, materialIDs ...int64) (*forecast.RunResult, error) {
	result, err := s.engine.Run(ctx, materialIDs...)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Forecast cache invalidation failed after run")
	}

	return result, nil
}

// LatestRun reports the most recent forecast run, or ErrNoForecast when none
// has been recorded.
func (s *ForecastService) LatestRun(ctx context.Context) (*domain.ForecastRun, error) {
	run, err := s.runs.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoForecast
		}
		return nil, err
	}
	return run, nil
}

func buildSummary(material domain.Material, snapshot domain.ForecastSnapshot) domain.ForecastSummary {
	return domain.ForecastSummary{
		MaterialID:        material.ID,
		MaterialCode:      material.Code,
		MaterialName:      material.Name,
		Unit:              material.Unit,
		CurrentStock:      snapshot.CurrentStock,
		DailyUsage:        snapshot.DailyUsage,
		ForecastedUsage:   snapshot.ForecastedUsage,
		ProjectedStock:    snapshot.ProjectedStock,
		DaysUntilStockout: snapshot.DaysUntilStockout,
		Status:            snapshot.Status,
		ConfidenceScore:   snapshot.ConfidenceScore,
	}
}
