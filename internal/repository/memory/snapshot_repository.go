package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/google/uuid"
)

// SnapshotRepository keeps forecast snapshots in memory with the same
// replace-never-merge semantics as the postgres implementation.
type SnapshotRepository struct {
	mu        sync.Mutex
	nextID    int64
	snapshots []domain.ForecastSnapshot
}

// NewSnapshotRepository creates an empty in-memory snapshot store.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{nextID: 1}
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// Upsert deactivates the material's previous active snapshot and inserts
// the new one as active in a single critical section.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *domain.ForecastSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.snapshots {
		if r.snapshots[i].MaterialID == snapshot.MaterialID && r.snapshots[i].IsActive {
			r.snapshots[i].IsActive = false
		}
	}

	snapshot.ID = r.nextID
	r.nextID++
	snapshot.IsActive = true
	r.snapshots = append(r.snapshots, *snapshot)

	return nil
}

func (r *SnapshotRepository) GetActive(ctx context.Context, materialID int64) (*domain.ForecastSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].MaterialID == materialID && r.snapshots[i].IsActive {
			s := r.snapshots[i]
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *SnapshotRepository) ListActive(ctx context.Context) ([]domain.ForecastSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.ForecastSnapshot
	for _, s := range r.snapshots {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out, nil
}

// All returns every snapshot, active or not; tests use it to assert the
// replace semantics.
func (r *SnapshotRepository) All() []domain.ForecastSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ForecastSnapshot(nil), r.snapshots...)
}

// RunRepository keeps forecast runs in memory.
type RunRepository struct {
	mu   sync.Mutex
	runs []domain.ForecastRun
}

// NewRunRepository creates an empty in-memory run store.
func NewRunRepository() *RunRepository {
	return &RunRepository{}
}

var _ repository.RunRepository = (*RunRepository)(nil)

func (r *RunRepository) Create(ctx context.Context, run *domain.ForecastRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *RunRepository) Update(ctx context.Context, run *domain.ForecastRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			r.runs[i] = *run
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ForecastRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == id {
			run := r.runs[i]
			return &run, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *RunRepository) Latest(ctx context.Context) (*domain.ForecastRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs) == 0 {
		return nil, repository.ErrNotFound
	}
	run := r.runs[len(r.runs)-1]
	return &run, nil
}
