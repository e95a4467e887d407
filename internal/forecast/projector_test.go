package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSummaryFigures(t *testing.T) {
	start := day(2026, 3, 15)

	proj := Project(ProjectionInput{
		MaterialID:     1,
		CurrentStock:   100,
		DailyUsage:     5,
		BaselineOutput: 10,
		Start:          start,
		HorizonDays:    30,
		DataPoints:     20,
	})

	assert.Equal(t, 150.0, proj.ForecastedUsage)
	assert.Equal(t, -50.0, proj.ProjectedStock)
	assert.Equal(t, 20, proj.DaysUntilStockout)
	assert.InDelta(t, 150*1.15, proj.ConfidenceUpper, 1e-9)
	assert.InDelta(t, 150*0.85, proj.ConfidenceLower, 1e-9)
	assert.Equal(t, 100, proj.ConfidenceScore)
	assert.Equal(t, start, proj.PeriodStart)
	assert.Equal(t, start.AddDate(0, 0, 30), proj.PeriodEnd)

	require.Len(t, proj.Days, 30)
	assert.Equal(t, start.AddDate(0, 0, 1), proj.Days[0].Date)
	assert.Equal(t, start.AddDate(0, 0, 30), proj.Days[29].Date)
}

func TestProjectDailyRows(t *testing.T) {
	proj := Project(ProjectionInput{
		BaselineOutput: 10,
		TrendSlope:     3,
		Start:          day(2026, 3, 15),
		HorizonDays:    30,
	})

	// The slope ramps in over the horizon: first day carries 1/30th of it,
	// the last day the full slope.
	assert.InDelta(t, 10+3.0/30, proj.Days[0].PredictedOutput, 1e-9)
	assert.InDelta(t, 13.0, proj.Days[29].PredictedOutput, 1e-9)
}

func TestProjectNegativePredictionsClampToZero(t *testing.T) {
	proj := Project(ProjectionInput{
		BaselineOutput: 1,
		TrendSlope:     -60,
		Start:          day(2026, 3, 15),
		HorizonDays:    30,
	})

	assert.Equal(t, 0.0, proj.Days[29].PredictedOutput)
}

func TestDaysUntilStockout(t *testing.T) {
	assert.Equal(t, 20, DaysUntilStockout(100, 5))
	assert.Equal(t, 19, DaysUntilStockout(99, 5))
	assert.Equal(t, 0, DaysUntilStockout(-10, 5))
	// Zero usage never runs out; the sentinel keeps the figure finite.
	assert.Equal(t, MaxDaysUntilStockout, DaysUntilStockout(100, 0))
	assert.Equal(t, MaxDaysUntilStockout, DaysUntilStockout(1e6, 1))
}

func TestConfidenceScore(t *testing.T) {
	assert.Equal(t, 70, confidenceScore(0))
	assert.Equal(t, 90, confidenceScore(5))
	assert.Equal(t, 100, confidenceScore(14))
	assert.Equal(t, 100, confidenceScore(90))
}
