package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material is a raw material managed by the catalog; the engine only reads it.
type Material struct {
	ID                  int64     `json:"id" db:"id"`
	Code                string    `json:"code" db:"code"`
	Name                string    `json:"name" db:"name"`
	Unit                string    `json:"unit" db:"unit"`
	UnitCost            float64   `json:"unit_cost" db:"unit_cost"`
	CurrentStock        float64   `json:"current_stock" db:"current_stock"`
	CriticalStock       float64   `json:"critical_stock" db:"critical_stock"`
	ReorderLevel        float64   `json:"reorder_level" db:"reorder_level"`
	MaxLevel            float64   `json:"max_level" db:"max_level"`
	LeadTimeDays        int       `json:"lead_time_days" db:"lead_time_days"`
	LeadTimeVariability int       `json:"lead_time_variability" db:"lead_time_variability"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a finished good. Stocked products run on a fixed daily batch
// output; made-to-order products are driven by accepted order lines.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Code        string  `json:"code" db:"code"`
	Name        string  `json:"name" db:"name"`
	Stocked     bool    `json:"stocked" db:"stocked"`
	DailyOutput float64 `json:"daily_output" db:"daily_output"`
}

// BOMLine defines how much of a material one unit of a product consumes.
type BOMLine struct {
	ProductID      int64   `json:"product_id" db:"product_id"`
	MaterialID     int64   `json:"material_id" db:"material_id"`
	QuantityPerUnit float64 `json:"quantity_per_unit" db:"quantity_per_unit"`
}

// ConsumptionSource tags where a consumption record came from.
type ConsumptionSource string

const (
	SourceStockedOutput     ConsumptionSource = "stocked_output"
	SourceTransactionLedger ConsumptionSource = "transaction_ledger"
)

// StockedOutputEvent is one day of batch production output. The per-material
// breakdown is optional in the source log; a nil MaterialQuantity means the
// consumption must be derived from the BOM at the ingestion boundary.
type StockedOutputEvent struct {
	ProductID        int64      `json:"product_id" db:"product_id"`
	Date             time.Time  `json:"date" db:"date"`
	QuantityProduced float64    `json:"quantity_produced" db:"quantity_produced"`
	MaterialID       int64      `json:"material_id" db:"material_id"`
	MaterialQuantity *float64   `json:"material_quantity,omitempty" db:"material_quantity"`
}

// LedgerEvent is one inventory transaction. Quantity is signed: outbound
// movements (consumption) are negative in the ledger.
type LedgerEvent struct {
	MaterialID int64     `json:"material_id" db:"material_id"`
	Timestamp  time.Time `json:"timestamp" db:"occurred_at"`
	Quantity   float64   `json:"quantity" db:"quantity"`
	Type       string    `json:"type" db:"movement_type"`
}

// ConsumptionRecord is a normalized, non-negative per-day consumption figure.
type ConsumptionRecord struct {
	MaterialID int64             `json:"material_id" db:"material_id"`
	Date       time.Time         `json:"date" db:"date"`
	Quantity   float64           `json:"quantity" db:"quantity"`
	Source     ConsumptionSource `json:"source" db:"source"`
}

// OrderLine is an accepted made-to-order line that drives custom production.
type OrderLine struct {
	ProductID int64     `json:"product_id" db:"product_id"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	OrderDate time.Time `json:"order_date" db:"order_date"`
}

// DemandEstimate is the estimator's output for a single material. It is
// recomputed on every forecast run and only persisted inside a snapshot.
type DemandEstimate struct {
	MaterialID    int64     `json:"material_id"`
	DailyUsage    float64   `json:"daily_usage"`
	MovingAvg7    float64   `json:"moving_avg_7"`
	MovingAvg14   float64   `json:"moving_avg_14"`
	HistoricalAvg float64   `json:"historical_avg"`
	TrendSlope    float64   `json:"trend_slope"`
	Variance      float64   `json:"variance"`
	StdDev        float64   `json:"std_dev"`
	DataPoints    int       `json:"data_points"`
	Method        string    `json:"method"`
	ComputedAt    time.Time `json:"computed_at"`
}

// ReplenishmentRecommendation is the reorder calculator's output.
type ReplenishmentRecommendation struct {
	MaterialID        int64     `json:"material_id"`
	ReorderPoint      float64   `json:"reorder_point"`
	SafetyStock       float64   `json:"safety_stock"`
	MaxLevel          float64   `json:"max_level"`
	SuggestedOrderQty float64   `json:"suggested_order_qty"`
	Urgency           Urgency   `json:"urgency"`
	ReorderDate       time.Time `json:"reorder_date"`
}

// ProjectedDay is one row of the day-by-day forecast.
type ProjectedDay struct {
	Date            time.Time `json:"date"`
	PredictedOutput float64   `json:"predicted_output"`
	MaterialUsage   float64   `json:"total_material_usage"`
}

// ForecastSnapshot is the persisted result of a forecast run for one
// material. At most one snapshot per material is active at a time.
type ForecastSnapshot struct {
	ID                  int64       `json:"id" db:"id"`
	MaterialID          int64       `json:"material_id" db:"material_id"`
	ForecastPeriodStart time.Time   `json:"forecast_period_start" db:"forecast_period_start"`
	ForecastPeriodEnd   time.Time   `json:"forecast_period_end" db:"forecast_period_end"`
	DailyUsage          float64     `json:"daily_usage" db:"daily_usage"`
	ForecastedUsage     float64     `json:"forecasted_usage" db:"forecasted_usage"`
	CurrentStock        float64     `json:"current_stock" db:"current_stock"`
	ProjectedStock      float64     `json:"projected_stock" db:"projected_stock"`
	DaysUntilStockout   int         `json:"days_until_stockout" db:"days_until_stockout"`
	Status              StockStatus `json:"status" db:"status"`
	ConfidenceScore     int         `json:"confidence_score" db:"confidence_score"`
	ConfidenceUpper     float64     `json:"confidence_upper" db:"confidence_upper"`
	ConfidenceLower     float64     `json:"confidence_lower" db:"confidence_lower"`
	Method              string      `json:"method" db:"method"`
	IsActive            bool        `json:"is_active" db:"is_active"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
}

// ForecastSummary is the per-material view exposed to reporting layers.
type ForecastSummary struct {
	MaterialID        int64       `json:"material_id"`
	MaterialCode      string      `json:"material_code"`
	MaterialName      string      `json:"material_name"`
	Unit              string      `json:"unit"`
	CurrentStock      float64     `json:"current_stock"`
	DailyUsage        float64     `json:"daily_usage"`
	ForecastedUsage   float64     `json:"forecasted_usage"`
	ProjectedStock    float64     `json:"projected_stock"`
	DaysUntilStockout int         `json:"days_until_stockout"`
	Status            StockStatus `json:"status"`
	ConfidenceScore   int         `json:"confidence_score"`
}

// ReplenishmentScheduleEntry is one line of the replenishment report.
type ReplenishmentScheduleEntry struct {
	MaterialID          int64           `json:"material_id"`
	MaterialCode        string          `json:"material_code"`
	MaterialName        string          `json:"material_name"`
	Unit                string          `json:"unit"`
	RecommendedQuantity float64         `json:"recommended_quantity"`
	ReorderDate         time.Time       `json:"reorder_date"`
	EstimatedCost       decimal.Decimal `json:"estimated_cost"`
	Urgency             Urgency         `json:"urgency"`
}

// ReplenishmentSchedule groups schedule entries by urgency tier, most
// urgent first.
type ReplenishmentSchedule struct {
	GeneratedAt time.Time                               `json:"generated_at"`
	Tiers       map[Urgency][]ReplenishmentScheduleEntry `json:"tiers"`
}

// RunStatus represents the state of a forecast batch run.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// ForecastRun tracks a single batch execution of the engine.
type ForecastRun struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Status             RunStatus  `json:"status" db:"status"`
	TotalMaterials     int        `json:"total_materials" db:"total_materials"`
	ProcessedMaterials int        `json:"processed_materials" db:"processed_materials"`
	SkippedMaterials   int        `json:"skipped_materials" db:"skipped_materials"`
	StartedAt          time.Time  `json:"started_at" db:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage       string     `json:"error_message,omitempty" db:"error_message"`
}

// Diagnostic records a per-material problem encountered during a best-effort
// batch run (missing BOM, persistence failure, ...).
type Diagnostic struct {
	MaterialID int64  `json:"material_id"`
	Reason     string `json:"reason"`
}
