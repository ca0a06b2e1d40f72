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

// RecordRepository paquetes pesados en memoria.
type RecordRepository struct {
	mu      sync.Mutex
	records map[string]*entity.PrebatchRecord
}

// NewRecordRepository crea el repositorio vacío.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{records: make(map[string]*entity.PrebatchRecord)}
}

var _ repository.RecordRepository = (*RecordRepository)(nil)

func clone(r *entity.PrebatchRecord) *entity.PrebatchRecord {
	cp := *r
	cp.Origins = append([]entity.PackageOrigin(nil), r.Origins...)
	return &cp
}

func (r *RecordRepository) Create(_ context.Context, rec *entity.PrebatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.ID == rec.ID || existing.BatchRecordID == rec.BatchRecordID {
			return fmt.Errorf("%w: paquete %s", domain.ErrDuplicate, rec.BatchRecordID)
		}
	}
	r.records[rec.ID] = clone(rec)
	return nil
}

func (r *RecordRepository) GetByID(_ context.Context, id string) (*entity.PrebatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id || rec.BatchRecordID == id {
			return clone(rec), nil
		}
	}
	return nil, nil
}

func (r *RecordRepository) ListByBatch(_ context.Context, batchID string) ([]*entity.PrebatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PrebatchRecord
	for _, rec := range r.records {
		if rec.BatchID == batchID {
			out = append(out, clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReCode != out[j].ReCode {
			return out[i].ReCode < out[j].ReCode
		}
		return out[i].PackageNo < out[j].PackageNo
	})
	return out, nil
}

func (r *RecordRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("%w: paquete %s", domain.ErrNotFound, id)
	}
	delete(r.records, id)
	return nil
}

// Len cantidad de paquetes guardados.
func (r *RecordRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
