package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
)

// ProductRepository is an in-memory product catalog.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// Load replaces the catalog contents.
func (r *ProductRepository) Load(products []domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append([]domain.Product(nil), products...)
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Product(nil), r.products...), nil
}

// BOMRepository is an in-memory bill-of-materials store.
type BOMRepository struct {
	mu    sync.RWMutex
	lines []domain.BOMLine
}

// NewBOMRepository creates an empty in-memory BOM repository.
func NewBOMRepository() *BOMRepository {
	return &BOMRepository{}
}

var _ repository.BOMRepository = (*BOMRepository)(nil)

// Load replaces the BOM contents.
func (r *BOMRepository) Load(lines []domain.BOMLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append([]domain.BOMLine(nil), lines...)
}

func (r *BOMRepository) LinesForMaterial(ctx context.Context, materialID int64) ([]domain.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.BOMLine
	for _, line := range r.lines {
		if line.MaterialID == materialID {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *BOMRepository) LinesForProduct(ctx context.Context, productID int64) ([]domain.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.BOMLine
	for _, line := range r.lines {
		if line.ProductID == productID {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out, nil
}
