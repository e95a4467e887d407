package forecast

import (
	"math"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
)

// Estimation methods recorded on the resulting estimate and snapshot.
const (
	MethodAuthoritative   = "authoritative"
	MethodWeightedAverage = "weighted_moving_average"
	MethodBOMBaseline     = "bom_baseline"
	MethodDefaultBaseline = "default_baseline"
)

// Weighting of the recency signals and the band within which historical
// consumption is trusted over the BOM-derived expectation.
const (
	movingAvg7Weight  = 0.6
	movingAvg14Weight = 0.4
	anomalyRatioLow   = 0.5
	anomalyRatioHigh  = 2.0
)

// EstimateInput carries everything the estimator needs for one material.
type EstimateInput struct {
	MaterialID int64

	// Series is the aggregated daily consumption history, date-ascending.
	Series []DailyPoint

	// BOMQuantityPerUnit is how much of this material one unit of the
	// consuming product uses.
	BOMQuantityPerUnit float64

	// AvgDailyOutput is the production baseline in product units per day.
	AvgDailyOutput float64

	// AuthoritativeUsage, when set, is a previously published daily-usage
	// figure that downstream reports must reuse for consistency. It wins
	// over every computed signal.
	AuthoritativeUsage *float64
}

// Estimator turns a material's consumption history and BOM baseline into a
// single daily-usage figure with trend and spread statistics.
type Estimator struct {
	cfg Config
}

// NewEstimator creates an estimator with the given run configuration.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg.normalized()}
}

// Estimate produces the demand estimate for one material.
//
// Daily usage precedence:
//  1. the authoritative published figure, unchanged;
//  2. the weighted moving average (0.6 x 7-day + 0.4 x 14-day), when it
//     stays within [0.5, 2.0] of the BOM-derived expectation;
//  3. the BOM-derived expectation (avg daily output x BOM ratio) when the
//     history is anomalous or absent;
//  4. the configured default baseline when the expectation is also zero.
func (e *Estimator) Estimate(in EstimateInput, now time.Time) domain.DemandEstimate {
	est := domain.DemandEstimate{
		MaterialID: in.MaterialID,
		DataPoints: len(in.Series),
		ComputedAt: now,
	}

	est.MovingAvg7 = movingAverage(in.Series, 7)
	est.MovingAvg14 = movingAverage(in.Series, 14)
	est.HistoricalAvg = movingAverage(in.Series, len(in.Series))
	est.TrendSlope = trendSlope(in.Series)
	est.Variance = variance(in.Series)
	est.StdDev = math.Sqrt(est.Variance)

	expected := in.AvgDailyOutput * in.BOMQuantityPerUnit

	switch {
	case in.AuthoritativeUsage != nil:
		est.DailyUsage = *in.AuthoritativeUsage
		est.Method = MethodAuthoritative
	case len(in.Series) == 0:
		if expected > 0 {
			est.DailyUsage = expected
			est.Method = MethodBOMBaseline
		} else {
			est.DailyUsage = e.cfg.DefaultDailyUsage
			est.Method = MethodDefaultBaseline
		}
	default:
		calculated := est.MovingAvg7*movingAvg7Weight + est.MovingAvg14*movingAvg14Weight
		if expected > 0 && isAnomalous(calculated, expected) {
			est.DailyUsage = expected
			est.Method = MethodBOMBaseline
		} else {
			est.DailyUsage = calculated
			est.Method = MethodWeightedAverage
		}
	}

	if est.DailyUsage < 0 {
		est.DailyUsage = 0
	}

	return est
}

// isAnomalous reports whether the computed usage is outside the trusted band
// around the BOM-derived expectation.
func isAnomalous(calculated, expected float64) bool {
	ratio := calculated / expected
	return ratio < anomalyRatioLow || ratio > anomalyRatioHigh
}

// movingAverage averages the most recent n data points. Only days that have
// data count; with fewer than n points it degenerates to the full-series
// average.
func movingAverage(series []DailyPoint, n int) float64 {
	if len(series) == 0 || n <= 0 {
		return 0
	}
	if n > len(series) {
		n = len(series)
	}

	var sum float64
	for _, p := range series[len(series)-n:] {
		sum += p.Quantity
	}
	return sum / float64(n)
}

// trendSlope fits quantity against day-index with ordinary least squares.
// The index is the day offset from the first point so that gaps in a sparse
// series weigh in. Fewer than 2 points give a flat trend.
func trendSlope(series []DailyPoint) float64 {
	if len(series) < 2 {
		return 0
	}

	first := series[0].Date
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range series {
		x := p.Date.Sub(first).Hours() / 24
		sumX += x
		sumY += p.Quantity
		sumXY += x * p.Quantity
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// variance is the population variance of the series quantities.
func variance(series []DailyPoint) float64 {
	if len(series) < 2 {
		return 0
	}

	mean := movingAverage(series, len(series))
	var sum float64
	for _, p := range series {
		d := p.Quantity - mean
		sum += d * d
	}
	return sum / float64(len(series))
}
