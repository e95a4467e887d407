package repository

import (
	"context"
	"errors"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// MaterialRepository reads the material registry. The engine never writes
// materials.
type MaterialRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Material, error)
	List(ctx context.Context) ([]domain.Material, error)
}

// ProductRepository reads the product catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// BOMRepository reads bill-of-materials reference data.
type BOMRepository interface {
	LinesForMaterial(ctx context.Context, materialID int64) ([]domain.BOMLine, error)
	LinesForProduct(ctx context.Context, productID int64) ([]domain.BOMLine, error)
}

// ConsumptionRepository reads the two raw consumption sources and accepts
// ledger backfills from the CSV importer.
type ConsumptionRepository interface {
	StockedOutputEvents(ctx context.Context, materialID int64, from, to time.Time) ([]domain.StockedOutputEvent, error)
	LedgerEvents(ctx context.Context, materialID int64, from, to time.Time) ([]domain.LedgerEvent, error)
	InsertLedgerEvents(ctx context.Context, events []domain.LedgerEvent) error
}

// OrderRepository reads accepted made-to-order lines.
type OrderRepository interface {
	AcceptedLines(ctx context.Context, productID int64, from, to time.Time) ([]domain.OrderLine, error)
}

// SnapshotRepository persists forecast snapshots. Upsert must atomically
// deactivate the material's previous active snapshot and insert the new one
// as active; a concurrent reader never observes zero or two active snapshots
// for the same material.
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *domain.ForecastSnapshot) error
	GetActive(ctx context.Context, materialID int64) (*domain.ForecastSnapshot, error)
	ListActive(ctx context.Context) ([]domain.ForecastSnapshot, error)
}

// RunRepository tracks forecast batch runs.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ForecastRun) error
	Update(ctx context.Context, run *domain.ForecastRun) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ForecastRun, error)
	Latest(ctx context.Context) (*domain.ForecastRun, error)
}
