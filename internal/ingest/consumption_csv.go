package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// ConsumptionImporter backfills the inventory transaction ledger from CSV
// exports of the legacy stock system. Expected columns: material_code, date,
// quantity, movement_type (optional, defaults to "consumption"). Quantities
// are stored as negative ledger movements.
type ConsumptionImporter struct {
	materials   repository.MaterialRepository
	consumption repository.ConsumptionRepository
}

func NewConsumptionImporter(materials repository.MaterialRepository, consumption repository.ConsumptionRepository) *ConsumptionImporter {
	return &ConsumptionImporter{materials: materials, consumption: consumption}
}

// ImportResult reports what an import did.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// ImportFile reads one CSV file and inserts its rows as ledger events. Rows
// with an unknown material code or an unparseable figure are logged and
// skipped, not fatal.
func (i *ConsumptionImporter) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	return i.Import(ctx, file)
}

// Import reads CSV rows from the reader and inserts them as ledger events.
func (i *ConsumptionImporter) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for idx, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = idx
	}
	for _, required := range []string{"material_code", "date", "quantity"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	codeToID, err := i.materialCodeIndex(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	var events []domain.LedgerEvent

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV record: %w", err)
		}

		code := strings.TrimSpace(record[colMap["material_code"]])
		materialID, ok := codeToID[code]
		if !ok {
			log.Warn().Str("material_code", code).Msg("Unknown material code in import, skipping row")
			result.Skipped++
			continue
		}

		occurredAt, err := parseDate(record[colMap["date"]])
		if err != nil {
			log.Warn().Str("material_code", code).Err(err).Msg("Bad date in import, skipping row")
			result.Skipped++
			continue
		}

		quantity, err := strconv.ParseFloat(strings.TrimSpace(record[colMap["quantity"]]), 64)
		if err != nil {
			log.Warn().Str("material_code", code).Err(err).Msg("Bad quantity in import, skipping row")
			result.Skipped++
			continue
		}
		if quantity > 0 {
			quantity = -quantity
		}

		movementType := "consumption"
		if idx, ok := colMap["movement_type"]; ok {
			if mt := strings.TrimSpace(record[idx]); mt != "" {
				movementType = mt
			}
		}

		events = append(events, domain.LedgerEvent{
			MaterialID: materialID,
			Timestamp:  occurredAt,
			Quantity:   quantity,
			Type:       movementType,
		})
	}

	if err := i.consumption.InsertLedgerEvents(ctx, events); err != nil {
		return nil, fmt.Errorf("inserting ledger events: %w", err)
	}
	result.Inserted = len(events)

	log.Info().Int("inserted", result.Inserted).Int("skipped", result.Skipped).
		Msg("Consumption import finished")
	return result, nil
}

func (i *ConsumptionImporter) materialCodeIndex(ctx context.Context) (map[string]int64, error) {
	materials, err := i.materials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	index := make(map[string]int64, len(materials))
	for _, m := range materials {
		index[m.Code] = m.ID
	}
	return index, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
