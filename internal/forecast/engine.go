package forecast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Engine runs the full forecast pipeline: aggregate consumption, estimate
// demand, calculate replenishment, classify stock health, project forward,
// and persist one snapshot per material.
type Engine struct {
	materials   repository.MaterialRepository
	products    repository.ProductRepository
	bom         repository.BOMRepository
	consumption repository.ConsumptionRepository
	orders      repository.OrderRepository
	snapshots   repository.SnapshotRepository
	runs        repository.RunRepository

	source    DemandSource
	estimator *Estimator
	cfg       Config

	// now is swapped out by tests for deterministic dates.
	now func() time.Time
}

// NewEngine wires an engine over the given stores. The demand source
// defaults to the combined stocked + made-to-order view.
func NewEngine(
	materials repository.MaterialRepository,
	products repository.ProductRepository,
	bom repository.BOMRepository,
	consumption repository.ConsumptionRepository,
	orders repository.OrderRepository,
	snapshots repository.SnapshotRepository,
	runs repository.RunRepository,
	cfg Config,
) *Engine {
	cfg = cfg.normalized()
	stocked := NewStockedSource(products, bom, consumption, "")
	madeToOrder := NewMadeToOrderSource(products, bom, consumption, orders)

	return &Engine{
		materials:   materials,
		products:    products,
		bom:         bom,
		consumption: consumption,
		orders:      orders,
		snapshots:   snapshots,
		runs:        runs,
		source:      NewCombinedSource(stocked, madeToOrder, consumption),
		estimator:   NewEstimator(cfg),
		cfg:         cfg,
		now:         time.Now,
	}
}

// WithSource overrides the demand source (stocked-only or made-to-order
// reports reuse the same pipeline).
func (e *Engine) WithSource(source DemandSource) *Engine {
	e.source = source
	return e
}

// MaterialResult is the engine's full per-material output.
type MaterialResult struct {
	Material       domain.Material
	Estimate       domain.DemandEstimate
	Recommendation domain.ReplenishmentRecommendation
	Projection     Projection
	Snapshot       domain.ForecastSnapshot
}

// RunResult summarizes a batch run.
type RunResult struct {
	Run         domain.ForecastRun
	Results     []MaterialResult
	Diagnostics []domain.Diagnostic
}

// Run regenerates forecasts for the given materials (all materials when none
// are given). Processing is best-effort per material: a material with
// missing reference data or a failed snapshot write is recorded as a
// diagnostic and the rest of the batch continues. Re-running on unchanged
// inputs produces identical numeric fields; interrupting a run leaves the
// untouched materials on their previous, still-valid snapshots.
func (e *Engine) Run(ctx context.Context, materialIDs ...int64) (*RunResult, error) {
	materials, err := e.loadMaterials(ctx, materialIDs)
	if err != nil {
		return nil, err
	}

	now := e.now()
	// One immutable stock snapshot for the whole run: every downstream step
	// sees the same figures no matter what moves mid-run.
	levels := CaptureStockLevels(materials, now)
	window := WindowEndingAt(now, e.cfg.HistoryWindowDays)

	run := domain.ForecastRun{
		ID:             uuid.New(),
		Status:         domain.RunProcessing,
		TotalMaterials: len(materials),
		StartedAt:      now,
	}
	if err := e.runs.Create(ctx, &run); err != nil {
		return nil, fmt.Errorf("creating forecast run: %w", err)
	}

	var (
		mu          sync.Mutex
		results     []MaterialResult
		diagnostics []domain.Diagnostic
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.WorkerCount)

	for _, material := range materials {
		g.Go(func() error {
			result, err := e.forecastMaterial(gctx, material, levels, window, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Best-effort policy: diagnose and move on. Only a
				// cancelled context aborts the batch.
				diagnostics = append(diagnostics, domain.Diagnostic{
					MaterialID: material.ID,
					Reason:     err.Error(),
				})
				log.Warn().
					Int64("material_id", material.ID).
					Str("material", material.Code).
					Err(err).
					Msg("forecast: skipping material")
				return gctx.Err()
			}
			results = append(results, *result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		run.Status = domain.RunFailed
		run.ErrorMessage = err.Error()
		completed := e.now()
		run.CompletedAt = &completed
		if updateErr := e.runs.Update(ctx, &run); updateErr != nil {
			log.Error().Err(updateErr).Msg("forecast: failed to mark run failed")
		}
		return nil, err
	}

	run.Status = domain.RunCompleted
	run.ProcessedMaterials = len(results)
	run.SkippedMaterials = len(diagnostics)
	completed := e.now()
	run.CompletedAt = &completed
	if err := e.runs.Update(ctx, &run); err != nil {
		return nil, fmt.Errorf("completing forecast run: %w", err)
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("processed", run.ProcessedMaterials).
		Int("skipped", run.SkippedMaterials).
		Msg("forecast: run completed")

	return &RunResult{Run: run, Results: results, Diagnostics: diagnostics}, nil
}

// forecastMaterial executes the pipeline for one material and persists the
// snapshot.
func (e *Engine) forecastMaterial(ctx context.Context, material domain.Material, levels StockLevels, window HistoryWindow, now time.Time) (*MaterialResult, error) {
	dc, err := e.source.Load(ctx, material, window)
	if err != nil {
		return nil, err
	}

	estimate := e.estimator.Estimate(EstimateInput{
		MaterialID:         material.ID,
		Series:             dc.Series,
		BOMQuantityPerUnit: dc.BOMQuantityPerUnit,
		AvgDailyOutput:     dc.BaselineOutput,
	}, now)

	currentStock := levels.For(material.ID)

	projection := Project(ProjectionInput{
		MaterialID:     material.ID,
		CurrentStock:   currentStock,
		DailyUsage:     estimate.DailyUsage,
		TrendSlope:     estimate.TrendSlope,
		BaselineOutput: dc.BaselineOutput,
		BOMLines:       dc.BOMLines,
		Start:          now,
		HorizonDays:    e.cfg.HorizonDays,
		DataPoints:     estimate.DataPoints,
	})

	recommendation := CalculateReplenishment(ReorderInput{
		Material:          material,
		DailyUsage:        estimate.DailyUsage,
		StdDev:            estimate.StdDev,
		CurrentStock:      currentStock,
		ProjectedStock:    projection.ProjectedStock,
		DaysUntilStockout: projection.DaysUntilStockout,
		Now:               now,
	})

	// Materials feeding a production line are classified on the projected
	// stock after the horizon; the current figure would hide the drain the
	// projection already knows about.
	status := domain.Classify(projection.ProjectedStock, material.CriticalStock, recommendation.ReorderPoint, recommendation.MaxLevel)

	snapshot := domain.ForecastSnapshot{
		MaterialID:          material.ID,
		ForecastPeriodStart: projection.PeriodStart,
		ForecastPeriodEnd:   projection.PeriodEnd,
		DailyUsage:          estimate.DailyUsage,
		ForecastedUsage:     projection.ForecastedUsage,
		CurrentStock:        currentStock,
		ProjectedStock:      projection.ProjectedStock,
		DaysUntilStockout:   projection.DaysUntilStockout,
		Status:              status,
		ConfidenceScore:     projection.ConfidenceScore,
		ConfidenceUpper:     projection.ConfidenceUpper,
		ConfidenceLower:     projection.ConfidenceLower,
		Method:              estimate.Method,
		IsActive:            true,
		CreatedAt:           now,
	}

	if err := e.snapshots.Upsert(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("persisting snapshot for material %d: %w", material.ID, err)
	}

	return &MaterialResult{
		Material:       material,
		Estimate:       estimate,
		Recommendation: recommendation,
		Projection:     projection,
		Snapshot:       snapshot,
	}, nil
}

// ClassifyUntracked labels a material that no production line consumes.
// These have no meaningful projection, so the label reflects current stock.
func ClassifyUntracked(material domain.Material) domain.StockStatus {
	return domain.Classify(material.CurrentStock, material.CriticalStock, material.ReorderLevel, material.MaxLevel)
}

func (e *Engine) loadMaterials(ctx context.Context, ids []int64) ([]domain.Material, error) {
	if len(ids) == 0 {
		materials, err := e.materials.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing materials: %w", err)
		}
		return materials, nil
	}

	materials := make([]domain.Material, 0, len(ids))
	for _, id := range ids {
		m, err := e.materials.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// A typo in one requested id must not abort the batch; the id
				// is logged and skipped.
				log.Warn().Int64("material_id", id).Msg("forecast: unknown material requested")
				continue
			}
			return nil, fmt.Errorf("loading material %d: %w", id, err)
		}
		materials = append(materials, *m)
	}
	return materials, nil
}
