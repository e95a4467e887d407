package forecast

import (
	"math"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
)

// serviceFactor is the z-value for a ~95% service level.
const serviceFactor = 1.65

// bufferDays pads suggested order quantities so a delivery covers a week
// beyond the target level.
const bufferDays = 7

// ReorderInput carries the figures the calculator works from. CurrentStock
// and ProjectedStock come from the run's stock snapshot and the projector,
// never from a live read.
type ReorderInput struct {
	Material          domain.Material
	DailyUsage        float64
	StdDev            float64
	CurrentStock      float64
	ProjectedStock    float64
	DaysUntilStockout int
	Now               time.Time
}

// CalculateReplenishment derives safety stock, reorder point, max level, a
// suggested order quantity and its urgency tier for one material.
func CalculateReplenishment(in ReorderInput) domain.ReplenishmentRecommendation {
	leadTime := float64(in.Material.LeadTimeDays)
	variability := float64(in.Material.LeadTimeVariability)

	rec := domain.ReplenishmentRecommendation{
		MaterialID: in.Material.ID,
	}

	// Safety stock: z x stddev x sqrt(lead time + variability) when demand
	// spread is known, otherwise a flat 20% lead-time buffer.
	if in.StdDev > 0 {
		rec.SafetyStock = serviceFactor * in.StdDev * math.Sqrt(leadTime+variability)
	} else {
		rec.SafetyStock = in.DailyUsage * leadTime * 0.2
	}
	if rec.SafetyStock < 0 {
		rec.SafetyStock = 0
	}

	// Reorder point, with the manually configured level winning only when
	// it is higher.
	rec.ReorderPoint = in.DailyUsage*(leadTime+variability) + rec.SafetyStock
	if in.Material.ReorderLevel > rec.ReorderPoint {
		rec.ReorderPoint = in.Material.ReorderLevel
	}
	if rec.ReorderPoint < 0 {
		rec.ReorderPoint = 0
	}

	// Max level: the configured ceiling when set, else reorder point plus
	// two lead times of usage.
	if in.Material.MaxLevel > 0 {
		rec.MaxLevel = in.Material.MaxLevel
	} else {
		rec.MaxLevel = rec.ReorderPoint + in.DailyUsage*leadTime*2
	}

	rec.Urgency = domain.UrgencyFor(in.DaysUntilStockout)
	effectiveLead := float64(domain.ExpeditedLeadTime(in.Material.LeadTimeDays, rec.Urgency))

	// Suggested order quantity, only when the projection says we will cross
	// the reorder point (or run out within the replenishment cycle).
	if in.ProjectedStock <= rec.ReorderPoint || float64(in.DaysUntilStockout) <= leadTime+variability {
		toMaxLevel := rec.MaxLevel + in.DailyUsage*bufferDays - in.CurrentStock
		coverLeadTime := in.DailyUsage * (effectiveLead + variability + bufferDays)
		rec.SuggestedOrderQty = math.Max(toMaxLevel, coverLeadTime)
		if rec.SuggestedOrderQty < 0 {
			rec.SuggestedOrderQty = 0
		}
	}

	rec.ReorderDate = reorderDate(in, rec.ReorderPoint, leadTime)

	return rec
}

// reorderDate is today when stock already sits at or below the reorder
// point, otherwise the day the trigger will be crossed minus the lead time.
// The crossing math is the only place "days until reorder" is used; every
// reported day count elsewhere is days until stockout.
func reorderDate(in ReorderInput, reorderPoint, leadTime float64) time.Time {
	today := truncateDay(in.Now)
	if in.CurrentStock <= reorderPoint {
		return today
	}

	daysUntilReorder := float64(MaxDaysUntilStockout)
	if in.DailyUsage > 0 {
		daysUntilReorder = (in.CurrentStock - reorderPoint) / in.DailyUsage
	}

	offset := int(math.Ceil(daysUntilReorder - leadTime))
	if offset < 0 {
		offset = 0
	}
	return today.AddDate(0, 0, offset)
}
