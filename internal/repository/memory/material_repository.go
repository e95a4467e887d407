package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
)

// MaterialRepository is an in-memory material registry used by tests and
// the CLI demo path.
type MaterialRepository struct {
	mu        sync.RWMutex
	materials map[int64]domain.Material
}

// NewMaterialRepository creates an empty in-memory material repository.
func NewMaterialRepository() *MaterialRepository {
	return &MaterialRepository{materials: make(map[int64]domain.Material)}
}

// Verify interface compliance
var _ repository.MaterialRepository = (*MaterialRepository)(nil)

// Load replaces the repository contents.
func (r *MaterialRepository) Load(materials []domain.Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials = make(map[int64]domain.Material, len(materials))
	for _, m := range materials {
		r.materials[m.ID] = m
	}
}

func (r *MaterialRepository) GetByID(ctx context.Context, id int64) (*domain.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.materials[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MaterialRepository) List(ctx context.Context) ([]domain.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Material, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
