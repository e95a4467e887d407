package forecast

import (
	"sort"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
)

// Aggregator normalizes raw consumption events from the two source systems
// (stocked-production output logs and the inventory transaction ledger) into
// a single per-day series.
type Aggregator struct{}

// Aggregate merges both event streams into a date-ordered sparse daily
// series. Days present in both sources are summed; days with no record in
// either source are absent, never zero-filled.
//
// Stocked-output events carry an optional per-material breakdown; when it is
// missing the consumption is derived from the produced quantity and the BOM
// ratio. Ledger quantities are signed: only outbound movements (negative
// quantities) count, folded in as absolute values, so every point in the
// output is non-negative.
func (Aggregator) Aggregate(stocked []domain.StockedOutputEvent, ledger []domain.LedgerEvent, bomQtyPerUnit float64) []DailyPoint {
	byDay := make(map[time.Time]float64)

	for _, ev := range stocked {
		qty := ev.QuantityProduced * bomQtyPerUnit
		if ev.MaterialQuantity != nil {
			qty = *ev.MaterialQuantity
		}
		if qty <= 0 {
			continue
		}
		byDay[truncateDay(ev.Date)] += qty
	}

	for _, ev := range ledger {
		if ev.Quantity >= 0 {
			// Inbound movement (receipt, return); not consumption.
			continue
		}
		byDay[truncateDay(ev.Timestamp)] += -ev.Quantity
	}

	series := make([]DailyPoint, 0, len(byDay))
	for day, qty := range byDay {
		series = append(series, DailyPoint{Date: day, Quantity: qty})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}

// ClampToWindow drops points outside the history window.
func ClampToWindow(series []DailyPoint, window HistoryWindow) []DailyPoint {
	out := make([]DailyPoint, 0, len(series))
	for _, p := range series {
		if p.Date.Before(window.From) || p.Date.After(window.To) {
			continue
		}
		out = append(out, p)
	}
	return out
}
