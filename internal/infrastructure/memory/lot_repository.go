package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

// LotRepository ledger de lotes en memoria.
type LotRepository struct {
	mu   sync.Mutex
	lots []*entity.InventoryLot
}

// NewLotRepository crea el repositorio con los lotes dados.
func NewLotRepository(lots ...*entity.InventoryLot) *LotRepository {
	r := &LotRepository{}
	for _, l := range lots {
		r.Add(l)
	}
	return r
}

var _ repository.LotRepository = (*LotRepository)(nil)

// Add agrega una copia del lote.
func (r *LotRepository) Add(l *entity.InventoryLot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.lots = append(r.lots, &cp)
}

func (r *LotRepository) find(id string) *entity.InventoryLot {
	for _, l := range r.lots {
		if prebatch.SameID(l.IntakeLotID, id) {
			return l
		}
	}
	return nil
}

func (r *LotRepository) ListByReCode(_ context.Context, reCode string) ([]*entity.InventoryLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InventoryLot
	for _, l := range r.lots {
		if prebatch.SameID(l.ReCode, reCode) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *LotRepository) GetByIntakeLotID(_ context.Context, intakeLotID string) (*entity.InventoryLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.find(intakeLotID)
	if l == nil {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *LotRepository) Consume(_ context.Context, intakeLotID string, volume decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.find(intakeLotID)
	if l == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLot, intakeLotID)
	}
	if l.RemainingVolume.LessThan(volume) {
		return fmt.Errorf("%w: lote %s", domain.ErrInsufficientStock, intakeLotID)
	}
	l.RemainingVolume = l.RemainingVolume.Sub(volume)
	l.UpdatedAt = time.Now()
	return nil
}

func (r *LotRepository) Restore(_ context.Context, intakeLotID string, volume decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.find(intakeLotID)
	if l == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLot, intakeLotID)
	}
	l.RemainingVolume = l.RemainingVolume.Add(volume)
	l.UpdatedAt = time.Now()
	return nil
}

func (r *LotRepository) SetStatus(_ context.Context, intakeLotID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.find(intakeLotID)
	if l == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLot, intakeLotID)
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return nil
}
