package forecast

import (
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
)

// Config tunes a forecast run.
type Config struct {
	HorizonDays       int     // projection horizon
	HistoryWindowDays int     // consumption history window read per material
	DefaultDailyUsage float64 // last-resort baseline when no history and no BOM expectation exist
	WorkerCount       int     // per-material fan-out
}

// DefaultConfig returns sensible defaults for batch runs.
func DefaultConfig() Config {
	return Config{
		HorizonDays:       30,
		HistoryWindowDays: 90,
		DefaultDailyUsage: 1.0,
		WorkerCount:       4,
	}
}

func (c Config) normalized() Config {
	if c.HorizonDays <= 0 {
		c.HorizonDays = 30
	}
	if c.HistoryWindowDays <= 0 {
		c.HistoryWindowDays = 90
	}
	if c.WorkerCount < 1 {
		c.WorkerCount = 1
	}
	return c
}

// HistoryWindow is the [From, To] date range a run reads consumption for.
type HistoryWindow struct {
	From time.Time
	To   time.Time
}

// WindowEndingAt builds a window of the given length ending at the given day.
func WindowEndingAt(to time.Time, days int) HistoryWindow {
	to = truncateDay(to)
	return HistoryWindow{From: to.AddDate(0, 0, -days), To: to}
}

// DailyPoint is one day of normalized consumption. Series are sparse: only
// days with at least one record appear.
type DailyPoint struct {
	Date     time.Time
	Quantity float64
}

// StockLevels is an immutable snapshot of every material's on-hand quantity,
// captured once at the start of a run. Threading it through every step keeps
// a forecast internally consistent even when stock moves mid-run.
type StockLevels struct {
	takenAt time.Time
	levels  map[int64]float64
}

// CaptureStockLevels snapshots the current stock of the given materials.
func CaptureStockLevels(materials []domain.Material, at time.Time) StockLevels {
	levels := make(map[int64]float64, len(materials))
	for _, m := range materials {
		levels[m.ID] = m.CurrentStock
	}
	return StockLevels{takenAt: at, levels: levels}
}

// For returns the captured stock level for a material, 0 when unknown.
func (s StockLevels) For(materialID int64) float64 {
	return s.levels[materialID]
}

// TakenAt reports when the snapshot was captured.
func (s StockLevels) TakenAt() time.Time {
	return s.takenAt
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
