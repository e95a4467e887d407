package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImporter(t *testing.T) (*ConsumptionImporter, *memory.ConsumptionRepository) {
	t.Helper()

	materials := memory.NewMaterialRepository()
	materials.Load([]domain.Material{
		{ID: 1, Code: "PLY-18", Name: "Plywood 18mm"},
		{ID: 2, Code: "GLU-01", Name: "Wood Glue"},
	})
	consumption := memory.NewConsumptionRepository()

	return NewConsumptionImporter(materials, consumption), consumption
}

func TestImportConsumption(t *testing.T) {
	importer, consumption := newImporter(t)

	input := strings.Join([]string{
		"material_code,date,quantity,movement_type",
		"PLY-18,2026-03-01,4.5,consumption",
		"GLU-01,2026-03-02,-2,adjustment",
		"PLY-18,2026-03-03,3,",
	}, "\n")

	result, err := importer.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 0, result.Skipped)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	events, err := consumption.LedgerEvents(context.Background(), 1, from, to)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Positive source quantities are stored as outbound movements.
	assert.Equal(t, -4.5, events[0].Quantity)
	assert.Equal(t, "consumption", events[0].Type)
	assert.Equal(t, -3.0, events[1].Quantity)
	assert.Equal(t, "consumption", events[1].Type)

	events, err = consumption.LedgerEvents(context.Background(), 2, from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)
	// Already-negative quantities keep their sign.
	assert.Equal(t, -2.0, events[0].Quantity)
	assert.Equal(t, "adjustment", events[0].Type)
}

func TestImportConsumptionSkipsBadRows(t *testing.T) {
	importer, consumption := newImporter(t)

	input := strings.Join([]string{
		"material_code,date,quantity",
		"UNKNOWN,2026-03-01,4",
		"PLY-18,not-a-date,4",
		"PLY-18,2026-03-01,lots",
		"PLY-18,2026-03-01,4",
	}, "\n")

	result, err := importer.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 3, result.Skipped)

	events, err := consumption.LedgerEvents(context.Background(), 1,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestImportConsumptionRejectsMissingColumns(t *testing.T) {
	importer, _ := newImporter(t)

	_, err := importer.Import(context.Background(), strings.NewReader("material_code,quantity\nPLY-18,4"))
	assert.Error(t, err)
}
