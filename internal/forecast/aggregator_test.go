package forecast

import (
	"testing"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateMergesBothSources(t *testing.T) {
	var agg Aggregator

	stocked := []domain.StockedOutputEvent{
		{Date: day(2026, 3, 1), QuantityProduced: 10},
		{Date: day(2026, 3, 2), QuantityProduced: 10},
	}
	ledger := []domain.LedgerEvent{
		{Timestamp: day(2026, 3, 2), Quantity: -4},
		{Timestamp: day(2026, 3, 4), Quantity: -6},
	}

	series := agg.Aggregate(stocked, ledger, 0.5)

	require.Len(t, series, 3)
	assert.Equal(t, day(2026, 3, 1), series[0].Date)
	assert.Equal(t, 5.0, series[0].Quantity)
	// Day present in both sources sums.
	assert.Equal(t, day(2026, 3, 2), series[1].Date)
	assert.Equal(t, 9.0, series[1].Quantity)
	// March 3rd has no record and must be absent, not zero-filled.
	assert.Equal(t, day(2026, 3, 4), series[2].Date)
	assert.Equal(t, 6.0, series[2].Quantity)
}

func TestAggregatePrefersExplicitMaterialQuantity(t *testing.T) {
	var agg Aggregator

	explicit := 7.5
	stocked := []domain.StockedOutputEvent{
		{Date: day(2026, 3, 1), QuantityProduced: 10, MaterialQuantity: &explicit},
	}

	series := agg.Aggregate(stocked, nil, 0.5)

	require.Len(t, series, 1)
	assert.Equal(t, 7.5, series[0].Quantity)
}

func TestAggregateIgnoresInboundLedgerMovements(t *testing.T) {
	var agg Aggregator

	ledger := []domain.LedgerEvent{
		{Timestamp: day(2026, 3, 1), Quantity: 50}, // receipt
		{Timestamp: day(2026, 3, 1), Quantity: -3},
		{Timestamp: day(2026, 3, 1), Quantity: -2},
	}

	series := agg.Aggregate(nil, ledger, 1)

	require.Len(t, series, 1)
	assert.Equal(t, 5.0, series[0].Quantity)
}

func TestAggregateFoldsTimestampsToDays(t *testing.T) {
	var agg Aggregator

	ledger := []domain.LedgerEvent{
		{Timestamp: time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC), Quantity: -1},
		{Timestamp: time.Date(2026, 3, 1, 19, 45, 0, 0, time.UTC), Quantity: -2},
	}

	series := agg.Aggregate(nil, ledger, 1)

	require.Len(t, series, 1)
	assert.Equal(t, day(2026, 3, 1), series[0].Date)
	assert.Equal(t, 3.0, series[0].Quantity)
}

func TestClampToWindow(t *testing.T) {
	series := []DailyPoint{
		{Date: day(2026, 2, 1), Quantity: 1},
		{Date: day(2026, 3, 1), Quantity: 2},
		{Date: day(2026, 3, 15), Quantity: 3},
	}

	window := HistoryWindow{From: day(2026, 2, 15), To: day(2026, 3, 10)}
	clamped := ClampToWindow(series, window)

	require.Len(t, clamped, 1)
	assert.Equal(t, day(2026, 3, 1), clamped[0].Date)
}
