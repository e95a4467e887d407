package forecast

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/shopspring/decimal"
)

// Schedule builds the replenishment report from the active snapshots. Daily
// usage comes from each snapshot as the authoritative published figure, so
// the schedule and the forecast summary a user sees side by side never
// disagree, even when new consumption has landed since the last run.
// Materials whose snapshot or reference data is missing are diagnosed and
// skipped.
func (e *Engine) Schedule(ctx context.Context) (*domain.ReplenishmentSchedule, []domain.Diagnostic, error) {
	snapshots, err := e.snapshots.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing active snapshots: %w", err)
	}

	now := e.now()
	window := WindowEndingAt(now, e.cfg.HistoryWindowDays)

	schedule := &domain.ReplenishmentSchedule{
		GeneratedAt: now,
		Tiers:       make(map[domain.Urgency][]domain.ReplenishmentScheduleEntry, len(domain.UrgencyTiers)),
	}
	var diagnostics []domain.Diagnostic

	for _, snapshot := range snapshots {
		material, err := e.materials.GetByID(ctx, snapshot.MaterialID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				diagnostics = append(diagnostics, domain.Diagnostic{
					MaterialID: snapshot.MaterialID,
					Reason:     "snapshot references unknown material",
				})
				continue
			}
			return nil, nil, fmt.Errorf("loading material %d: %w", snapshot.MaterialID, err)
		}

		dc, err := e.source.Load(ctx, *material, window)
		if err != nil {
			if errors.Is(err, ErrNoBOM) {
				diagnostics = append(diagnostics, domain.Diagnostic{
					MaterialID: material.ID,
					Reason:     err.Error(),
				})
				continue
			}
			return nil, nil, err
		}

		authoritative := snapshot.DailyUsage
		estimate := e.estimator.Estimate(EstimateInput{
			MaterialID:         material.ID,
			Series:             dc.Series,
			BOMQuantityPerUnit: dc.BOMQuantityPerUnit,
			AvgDailyOutput:     dc.BaselineOutput,
			AuthoritativeUsage: &authoritative,
		}, now)

		rec := CalculateReplenishment(ReorderInput{
			Material:          *material,
			DailyUsage:        estimate.DailyUsage,
			StdDev:            estimate.StdDev,
			CurrentStock:      snapshot.CurrentStock,
			ProjectedStock:    snapshot.ProjectedStock,
			DaysUntilStockout: snapshot.DaysUntilStockout,
			Now:               now,
		})
		if rec.SuggestedOrderQty <= 0 {
			continue
		}

		qty := decimal.NewFromFloat(rec.SuggestedOrderQty).Round(2)
		cost := qty.Mul(decimal.NewFromFloat(material.UnitCost)).Round(2)

		entry := domain.ReplenishmentScheduleEntry{
			MaterialID:          material.ID,
			MaterialCode:        material.Code,
			MaterialName:        material.Name,
			Unit:                material.Unit,
			RecommendedQuantity: qty.InexactFloat64(),
			ReorderDate:         rec.ReorderDate,
			EstimatedCost:       cost,
			Urgency:             rec.Urgency,
		}
		schedule.Tiers[rec.Urgency] = append(schedule.Tiers[rec.Urgency], entry)
	}

	for _, tier := range domain.UrgencyTiers {
		entries := schedule.Tiers[tier]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].ReorderDate.Equal(entries[j].ReorderDate) {
				return entries[i].MaterialID < entries[j].MaterialID
			}
			return entries[i].ReorderDate.Before(entries[j].ReorderDate)
		})
	}

	return schedule, diagnostics, nil
}
