package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

// BatchRepository lotes de producción en memoria.
type BatchRepository struct {
	mu      sync.Mutex
	batches []*entity.ProductionBatch
}

// NewBatchRepository crea el repositorio con los lotes dados.
func NewBatchRepository(batches ...*entity.ProductionBatch) *BatchRepository {
	r := &BatchRepository{}
	for _, b := range batches {
		cp := *b
		r.batches = append(r.batches, &cp)
	}
	return r
}

var _ repository.BatchRepository = (*BatchRepository)(nil)

func (r *BatchRepository) ListByPlan(_ context.Context, planID string) ([]*entity.ProductionBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ProductionBatch
	for _, b := range r.batches {
		if b.PlanID == planID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchID < out[j].BatchID })
	return out, nil
}

func (r *BatchRepository) MarkPrepared(_ context.Context, batchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.BatchID == batchID {
			b.Prepared = true
			return nil
		}
	}
	return fmt.Errorf("%w: lote de producción %s", domain.ErrNotFound, batchID)
}

// IsPrepared indica si el lote quedó preparado.
func (r *BatchRepository) IsPrepared(batchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.BatchID == batchID {
			return b.Prepared
		}
	}
	return false
}
