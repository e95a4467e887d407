package forecast

import (
	"math"
	"testing"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculateReplenishmentSafetyStock(t *testing.T) {
	rec := CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 7, LeadTimeVariability: 2},
		DailyUsage:        5,
		StdDev:            2,
		CurrentStock:      1000,
		ProjectedStock:    1000,
		DaysUntilStockout: 200,
		Now:               day(2026, 3, 15),
	})

	// z x stddev x sqrt(lead + variability)
	assert.InDelta(t, 1.65*2*3, rec.SafetyStock, 1e-9)
	assert.InDelta(t, 5*9+rec.SafetyStock, rec.ReorderPoint, 1e-9)
}

func TestCalculateReplenishmentSafetyStockFallback(t *testing.T) {
	rec := CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 10},
		DailyUsage:        5,
		StdDev:            0,
		CurrentStock:      1000,
		ProjectedStock:    1000,
		DaysUntilStockout: 200,
		Now:               day(2026, 3, 15),
	})

	// No demand spread: flat 20% lead-time buffer.
	assert.InDelta(t, 5*10*0.2, rec.SafetyStock, 1e-9)
}

func TestCalculateReplenishmentManualReorderLevelWinsOnlyWhenHigher(t *testing.T) {
	base := ReorderInput{
		Material:          domain.Material{LeadTimeDays: 10},
		DailyUsage:        5,
		CurrentStock:      1000,
		ProjectedStock:    1000,
		DaysUntilStockout: 200,
		Now:               day(2026, 3, 15),
	}
	computed := 5*10.0 + 5*10*0.2 // usage x lead + fallback safety stock

	higher := base
	higher.Material.ReorderLevel = computed + 40
	rec := CalculateReplenishment(higher)
	assert.Equal(t, computed+40, rec.ReorderPoint)

	lower := base
	lower.Material.ReorderLevel = computed - 40
	rec = CalculateReplenishment(lower)
	assert.InDelta(t, computed, rec.ReorderPoint, 1e-9)
}

func TestCalculateReplenishmentSuggestedQuantity(t *testing.T) {
	rec := CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 5, MaxLevel: 200},
		DailyUsage:        5,
		CurrentStock:      100,
		ProjectedStock:    -50, // horizon drains past zero, well under the reorder point
		DaysUntilStockout: 20,
		Now:               day(2026, 3, 15),
	})

	// 20 days of cover puts this in the low tier, so the lead time is not
	// expedited.
	assert.Equal(t, domain.UrgencyLow, rec.Urgency)

	toMaxLevel := 200 + 5.0*bufferDays - 100
	coverLeadTime := 5.0 * (5 + 0 + bufferDays)
	assert.InDelta(t, math.Max(toMaxLevel, coverLeadTime), rec.SuggestedOrderQty, 1e-9)
}

func TestCalculateReplenishmentNoOrderWhenHealthy(t *testing.T) {
	rec := CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 5},
		DailyUsage:        5,
		CurrentStock:      1000,
		ProjectedStock:    850,
		DaysUntilStockout: 200,
		Now:               day(2026, 3, 15),
	})

	assert.Equal(t, 0.0, rec.SuggestedOrderQty)
}

func TestCalculateReplenishmentExpeditedCover(t *testing.T) {
	critical := CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 10, MaxLevel: 1},
		DailyUsage:        5,
		CurrentStock:      0,
		ProjectedStock:    -150,
		DaysUntilStockout: 0,
		Now:               day(2026, 3, 15),
	})

	assert.Equal(t, domain.UrgencyCritical, critical.Urgency)
	// Critical orders expedite the lead time from 10 to 7 days in the
	// cover-lead-time term.
	cover := 5.0 * (7 + 0 + bufferDays)
	toMax := 1 + 5.0*bufferDays - 0
	assert.InDelta(t, math.Max(toMax, cover), critical.SuggestedOrderQty, 1e-9)
}

func TestReorderDate(t *testing.T) {
	now := day(2026, 3, 15)

	// Already at the trigger: order today.
	rec := CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 5, ReorderLevel: 100},
		DailyUsage:        5,
		CurrentStock:      80,
		ProjectedStock:    80,
		DaysUntilStockout: 16,
		Now:               now,
	})
	assert.Equal(t, now, rec.ReorderDate)

	// Stock 150, trigger 100, usage 5: the trigger is crossed in 10 days;
	// ordering lead-time (5 days) ahead of that means 5 days from now.
	rec = CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 5, ReorderLevel: 100},
		DailyUsage:        5,
		CurrentStock:      150,
		ProjectedStock:    150,
		DaysUntilStockout: 30,
		Now:               now,
	})
	assert.Equal(t, now.AddDate(0, 0, 5), rec.ReorderDate)

	// Lead time longer than the days to the trigger clamps to today. The
	// computed reorder point is 5x20 + 20 safety stock = 120, crossed in
	// two days, well inside the 20-day lead time.
	rec = CalculateReplenishment(ReorderInput{
		Material:          domain.Material{LeadTimeDays: 20},
		DailyUsage:        5,
		CurrentStock:      130,
		ProjectedStock:    130,
		DaysUntilStockout: 26,
		Now:               now,
	})
	assert.Equal(t, now, rec.ReorderDate)
}
