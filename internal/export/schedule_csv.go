package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ScheduleExporter writes the replenishment schedule as a CSV, most urgent
// tier first, and optionally archives the file to object storage.
type ScheduleExporter struct {
	outputDir string
	store     storage.ObjectStorage
}

// NewScheduleExporter builds an exporter. The storage may be nil, in which
// case files are only written locally.
func NewScheduleExporter(outputDir string, store storage.ObjectStorage) *ScheduleExporter {
	return &ScheduleExporter{outputDir: outputDir, store: store}
}

var scheduleHeader = []string{
	"urgency", "material_code", "material_name", "unit",
	"recommended_quantity", "reorder_date", "estimated_cost",
}

// Write renders the schedule to <outputDir>/replenishment_<date>.csv and
// returns the path.
func (e *ScheduleExporter) Write(ctx context.Context, schedule *domain.ReplenishmentSchedule) (string, error) {
	var buf bytes.Buffer
	if err := renderScheduleCSV(&buf, schedule); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	name := fmt.Sprintf("replenishment_%s.csv", schedule.GeneratedAt.Format("2006-01-02"))
	path := filepath.Join(e.outputDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing schedule csv: %w", err)
	}

	if e.store != nil {
		reader := bytes.NewReader(buf.Bytes())
		if err := e.store.Upload(ctx, name, reader, int64(buf.Len()), "text/csv"); err != nil {
			// The local file is the deliverable, the archive copy is not.
			log.Warn().Err(err).Str("object", name).Msg("Schedule upload to object storage failed")
		}
	}

	return path, nil
}

func renderScheduleCSV(buf *bytes.Buffer, schedule *domain.ReplenishmentSchedule) error {
	writer := csv.NewWriter(buf)

	if err := writer.Write(scheduleHeader); err != nil {
		return err
	}

	for _, tier := range domain.UrgencyTiers {
		for _, entry := range schedule.Tiers[tier] {
			record := []string{
				string(entry.Urgency),
				entry.MaterialCode,
				entry.MaterialName,
				entry.Unit,
				decimal.NewFromFloat(entry.RecommendedQuantity).Round(2).String(),
				entry.ReorderDate.Format("2006-01-02"),
				entry.EstimatedCost.Round(2).String(),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSummaries renders the per-material forecast summaries next to the
// schedule so both reports can be handed over together.
func (e *ScheduleExporter) WriteSummaries(summaries []domain.ForecastSummary, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"material_code", "material_name", "unit", "current_stock",
		"daily_usage", "forecasted_usage", "projected_stock",
		"days_until_stockout", "status", "confidence_score",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, s := range summaries {
		record := []string{
			s.MaterialCode,
			s.MaterialName,
			s.Unit,
			decimal.NewFromFloat(s.CurrentStock).Round(2).String(),
			decimal.NewFromFloat(s.DailyUsage).Round(2).String(),
			decimal.NewFromFloat(s.ForecastedUsage).Round(2).String(),
			decimal.NewFromFloat(s.ProjectedStock).Round(2).String(),
			fmt.Sprintf("%d", s.DaysUntilStockout),
			string(s.Status),
			fmt.Sprintf("%d", s.ConfidenceScore),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	name := fmt.Sprintf("forecast_summary_%s.csv", generatedAt.Format("2006-01-02"))
	path := filepath.Join(e.outputDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing summary csv: %w", err)
	}

	return path, nil
}
