package domain

import "strings"

// StockStatus labels a material's stock position.
type StockStatus string

const (
	StatusOutOfStock  StockStatus = "out_of_stock"
	StatusCritical    StockStatus = "critical"
	StatusLowStock    StockStatus = "low_stock"
	StatusOverstocked StockStatus = "overstocked"
	StatusInStock     StockStatus = "in_stock"
)

var stockStatusLabels = map[StockStatus]string{
	StatusOutOfStock:  "Out of Stock",
	StatusCritical:    "Critical",
	StatusLowStock:    "Low Stock",
	StatusOverstocked: "Overstocked",
	StatusInStock:     "In Stock",
}

// StockStatusLabel returns a human-readable label for a stock status.
func StockStatusLabel(status StockStatus) string {
	if label, ok := stockStatusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParseStockStatus returns the status for a given label or code
// (case-insensitive).
func ParseStockStatus(s string) (StockStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch StockStatus(normalized) {
	case StatusOutOfStock, StatusCritical, StatusLowStock, StatusOverstocked, StatusInStock:
		return StockStatus(normalized), true
	}

	return "", false
}

// Classify labels a stock position from the available quantity and the
// material's thresholds. Rules are evaluated in strict priority order and
// the first match wins:
//
//  1. available <= 0                                  -> out_of_stock
//  2. criticalStock > 0 && available <= criticalStock -> critical
//  3. reorderPoint > 0 && available <= reorderPoint   -> low_stock
//  4. maxLevel > 0 && available > maxLevel            -> overstocked
//  5. otherwise                                       -> in_stock
//
// Whether "available" is current stock or projected stock is the caller's
// choice: materials consumed by tracked production lines classify on the
// projected stock after the horizon, untracked materials on current stock.
// Every call site states which one it passes.
func Classify(available, criticalStock, reorderPoint, maxLevel float64) StockStatus {
	switch {
	case available <= 0:
		return StatusOutOfStock
	case criticalStock > 0 && available <= criticalStock:
		return StatusCritical
	case reorderPoint > 0 && available <= reorderPoint:
		return StatusLowStock
	case maxLevel > 0 && available > maxLevel:
		return StatusOverstocked
	default:
		return StatusInStock
	}
}
