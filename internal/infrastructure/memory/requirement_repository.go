package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

// RequirementRepository requerimientos de ingredientes en memoria.
type RequirementRepository struct {
	mu   sync.Mutex
	reqs []*entity.IngredientRequirement
}

// NewRequirementRepository crea el repositorio con los requerimientos dados.
func NewRequirementRepository(reqs ...*entity.IngredientRequirement) *RequirementRepository {
	r := &RequirementRepository{}
	for _, q := range reqs {
		cp := *q
		r.reqs = append(r.reqs, &cp)
	}
	return r
}

var _ repository.RequirementRepository = (*RequirementRepository)(nil)

func (r *RequirementRepository) ListByBatch(_ context.Context, batchID string) ([]*entity.IngredientRequirement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.IngredientRequirement
	for _, q := range r.reqs {
		if q.BatchID == batchID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReCode < out[j].ReCode })
	return out, nil
}

func (r *RequirementRepository) SummaryByPlan(_ context.Context, planID string) ([]*entity.IngredientSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCode := map[string]*entity.IngredientSummary{}
	var order []string
	for _, q := range r.reqs {
		if q.PlanID != planID {
			continue
		}
		s, ok := byCode[q.ReCode]
		if !ok {
			s = &entity.IngredientSummary{PlanID: planID, ReCode: q.ReCode, IngredientName: q.IngredientName}
			byCode[q.ReCode] = s
			order = append(order, q.ReCode)
		}
		s.TotalRequiredVolume = s.TotalRequiredVolume.Add(q.PerBatchVolume)
		s.TotalPackagedVolume = s.TotalPackagedVolume.Add(q.TotalPackagedVolume)
		s.BatchCount++
		if q.Status == entity.RequirementDone {
			s.DoneBatches++
		}
	}
	sort.Strings(order)
	out := make([]*entity.IngredientSummary, 0, len(order))
	for _, code := range order {
		out = append(out, byCode[code])
	}
	return out, nil
}

func (r *RequirementRepository) SetStatus(_ context.Context, batchID, reCode string, status entity.RequirementStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.reqs {
		if q.BatchID == batchID && prebatch.SameID(q.ReCode, reCode) {
			q.Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: requerimiento %s/%s", domain.ErrNotFound, batchID, reCode)
}

// Get devuelve una copia del requerimiento, o nil.
func (r *RequirementRepository) Get(batchID, reCode string) *entity.IngredientRequirement {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.reqs {
		if q.BatchID == batchID && prebatch.SameID(q.ReCode, reCode) {
			cp := *q
			return &cp
		}
	}
	return nil
}
