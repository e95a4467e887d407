package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
)

// ConsumptionRepository holds raw consumption events in memory.
type ConsumptionRepository struct {
	mu      sync.RWMutex
	stocked []domain.StockedOutputEvent
	ledger  []domain.LedgerEvent
}

// NewConsumptionRepository creates an empty in-memory consumption store.
func NewConsumptionRepository() *ConsumptionRepository {
	return &ConsumptionRepository{}
}

var _ repository.ConsumptionRepository = (*ConsumptionRepository)(nil)

// LoadStockedOutput replaces the stocked-production output log.
func (r *ConsumptionRepository) LoadStockedOutput(events []domain.StockedOutputEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stocked = append([]domain.StockedOutputEvent(nil), events...)
}

// LoadLedger replaces the transaction ledger.
func (r *ConsumptionRepository) LoadLedger(events []domain.LedgerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger = append([]domain.LedgerEvent(nil), events...)
}

func (r *ConsumptionRepository) StockedOutputEvents(ctx context.Context, materialID int64, from, to time.Time) ([]domain.StockedOutputEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.StockedOutputEvent
	for _, ev := range r.stocked {
		if ev.MaterialID != materialID || ev.Date.Before(from) || ev.Date.After(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *ConsumptionRepository) LedgerEvents(ctx context.Context, materialID int64, from, to time.Time) ([]domain.LedgerEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.LedgerEvent
	for _, ev := range r.ledger {
		if ev.MaterialID != materialID || ev.Timestamp.Before(from) || ev.Timestamp.After(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *ConsumptionRepository) InsertLedgerEvents(ctx context.Context, events []domain.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger = append(r.ledger, events...)
	return nil
}

// OrderRepository holds accepted order lines in memory.
type OrderRepository struct {
	mu    sync.RWMutex
	lines []domain.OrderLine
}

// NewOrderRepository creates an empty in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// Load replaces the accepted order lines.
func (r *OrderRepository) Load(lines []domain.OrderLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append([]domain.OrderLine(nil), lines...)
}

func (r *OrderRepository) AcceptedLines(ctx context.Context, productID int64, from, to time.Time) ([]domain.OrderLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.OrderLine
	for _, line := range r.lines {
		if line.ProductID != productID || line.OrderDate.Before(from) || line.OrderDate.After(to) {
			continue
		}
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.Before(out[j].OrderDate) })
	return out, nil
}
