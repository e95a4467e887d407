package forecast

import (
	"math"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
)

// MaxDaysUntilStockout caps days-until-stockout when usage is zero; the
// figure is never infinite or negative.
const MaxDaysUntilStockout = 999

// Confidence bounds and scoring.
const (
	confidenceUpperFactor = 1.15
	confidenceLowerFactor = 0.85

	confidenceBase          = 70
	confidenceHistoryBonus  = 20
	confidenceDepthBonus    = 10
	confidenceDepthMinimum  = 14
	confidenceScoreMaximum  = 100
)

// ProjectionInput carries the estimator output plus the production context
// needed to roll a forecast forward.
type ProjectionInput struct {
	MaterialID     int64
	CurrentStock   float64 // from the run's stock snapshot
	DailyUsage     float64
	TrendSlope     float64
	BaselineOutput float64 // product units per day
	BOMLines       []domain.BOMLine
	Start          time.Time
	HorizonDays    int
	DataPoints     int
}

// Projection is the day-by-day forecast and its summary roll-up.
type Projection struct {
	Days              []domain.ProjectedDay
	ForecastedUsage   float64
	ProjectedStock    float64
	ConfidenceUpper   float64
	ConfidenceLower   float64
	DaysUntilStockout int
	ConfidenceScore   int
	PeriodStart       time.Time
	PeriodEnd         time.Time
}

// Project generates the daily forecast rows and the summary figures. The
// trend is applied gradually so a fitted slope ramps in over the horizon
// instead of jumping on day one.
func Project(in ProjectionInput) Projection {
	horizon := in.HorizonDays
	if horizon <= 0 {
		horizon = 30
	}

	start := truncateDay(in.Start)
	var bomQtyTotal float64
	for _, line := range in.BOMLines {
		bomQtyTotal += line.QuantityPerUnit
	}

	days := make([]domain.ProjectedDay, 0, horizon)
	for i := 1; i <= horizon; i++ {
		predicted := in.BaselineOutput + in.TrendSlope*(float64(i)/float64(horizon))
		if predicted < 0 {
			predicted = 0
		}
		days = append(days, domain.ProjectedDay{
			Date:            start.AddDate(0, 0, i),
			PredictedOutput: predicted,
			MaterialUsage:   predicted * bomQtyTotal,
		})
	}

	proj := Projection{
		Days:            days,
		ForecastedUsage: in.DailyUsage * float64(horizon),
		PeriodStart:     start,
		PeriodEnd:       start.AddDate(0, 0, horizon),
	}
	proj.ProjectedStock = in.CurrentStock - proj.ForecastedUsage
	proj.ConfidenceUpper = proj.ForecastedUsage * confidenceUpperFactor
	proj.ConfidenceLower = proj.ForecastedUsage * confidenceLowerFactor
	proj.DaysUntilStockout = DaysUntilStockout(in.CurrentStock, in.DailyUsage)
	proj.ConfidenceScore = confidenceScore(in.DataPoints)

	return proj
}

// DaysUntilStockout is floor(stock / usage), capped at the sentinel when
// usage is zero and floored at zero for negative stock.
func DaysUntilStockout(currentStock, dailyUsage float64) int {
	if dailyUsage <= 0 {
		return MaxDaysUntilStockout
	}
	days := int(math.Floor(currentStock / dailyUsage))
	if days < 0 {
		return 0
	}
	if days > MaxDaysUntilStockout {
		return MaxDaysUntilStockout
	}
	return days
}

func confidenceScore(dataPoints int) int {
	score := confidenceBase
	if dataPoints > 0 {
		score += confidenceHistoryBonus
	}
	if dataPoints >= confidenceDepthMinimum {
		score += confidenceDepthBonus
	}
	if score > confidenceScoreMaximum {
		score = confidenceScoreMaximum
	}
	return score
}
