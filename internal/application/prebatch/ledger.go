package prebatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	rules "github.com/jhoicas/Prebatch-api/internal/domain/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

// LotLedger expone los lotes de inventario en orden FIFO y aplica consumos y devoluciones.
type LotLedger struct {
	repo repository.LotRepository
}

// NewLotLedger construye el ledger sobre el repositorio de lotes.
func NewLotLedger(repo repository.LotRepository) *LotLedger {
	return &LotLedger{repo: repo}
}

// EligibleLots devuelve los lotes con volumen del ingrediente, en orden FIFO.
func (l *LotLedger) EligibleLots(ctx context.Context, reCode string, includeInactive bool) ([]*entity.InventoryLot, error) {
	return l.eligible(ctx, reCode, includeInactive, nil)
}

func (l *LotLedger) eligible(ctx context.Context, reCode string, includeInactive bool, pending map[string]decimal.Decimal) ([]*entity.InventoryLot, error) {
	lots, err := l.repo.ListByReCode(ctx, reCode)
	if err != nil {
		return nil, domain.NewPersistenceError("listar lotes", err)
	}
	return rules.EligibleLots(lots, reCode, includeInactive, pending), nil
}

// IsFIFOCompliant indica si lotID es la cabeza FIFO del ingrediente.
func (l *LotLedger) IsFIFOCompliant(ctx context.Context, reCode, lotID string) (bool, error) {
	eligible, err := l.eligible(ctx, reCode, false, nil)
	if err != nil {
		return false, err
	}
	return rules.IsFIFOCompliant(lotID, eligible), nil
}

// CheckScan valida un lote escaneado para el ingrediente: debe existir, pertenecer
// al ingrediente, tener volumen y ser la cabeza FIFO descontando lo pendiente.
func (l *LotLedger) CheckScan(ctx context.Context, reCode, lotID string, pending map[string]decimal.Decimal) (*entity.InventoryLot, error) {
	if lotID == "" {
		return nil, fmt.Errorf("%w: lote vacío", domain.ErrInvalidInput)
	}
	lots, err := l.repo.ListByReCode(ctx, reCode)
	if err != nil {
		return nil, domain.NewPersistenceError("listar lotes", err)
	}
	lot := rules.FindLot(lots, lotID)
	if lot == nil {
		other, err := l.repo.GetByIntakeLotID(ctx, lotID)
		if err != nil {
			return nil, domain.NewPersistenceError("buscar lote", err)
		}
		if other != nil {
			return nil, fmt.Errorf("%w: el lote %s pertenece al ingrediente %s", domain.ErrInvalidInput, other.IntakeLotID, other.ReCode)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownLot, lotID)
	}
	if !lot.IsActive() {
		return nil, fmt.Errorf("%w: el lote %s está inactivo", domain.ErrInvalidInput, lot.IntakeLotID)
	}
	if !rules.HasVolume(lot, pending) {
		return nil, fmt.Errorf("%w: lote %s sin volumen disponible", domain.ErrInsufficientStock, lot.IntakeLotID)
	}
	eligible := rules.EligibleLots(lots, reCode, false, pending)
	if !rules.IsFIFOCompliant(lot.IntakeLotID, eligible) {
		head := rules.Head(eligible)
		return nil, &domain.FIFOViolationError{
			ScannedLotID:   lot.IntakeLotID,
			ExpectedLotID:  head.IntakeLotID,
			ExpectedExpiry: head.ExpireDate,
		}
	}
	return lot, nil
}

// Consume descuenta volume del lote de forma atómica.
func (l *LotLedger) Consume(ctx context.Context, lotID string, volume decimal.Decimal) error {
	if !volume.IsPositive() {
		return fmt.Errorf("%w: volumen a consumir debe ser positivo", domain.ErrInvalidInput)
	}
	if err := l.repo.Consume(ctx, lotID, volume); err != nil {
		if errors.Is(err, domain.ErrUnknownLot) || errors.Is(err, domain.ErrInsufficientStock) {
			return err
		}
		return domain.NewPersistenceError("consumir lote", err)
	}
	return nil
}

// Restore devuelve volume al lote.
func (l *LotLedger) Restore(ctx context.Context, lotID string, volume decimal.Decimal) error {
	if !volume.IsPositive() {
		return fmt.Errorf("%w: volumen a devolver debe ser positivo", domain.ErrInvalidInput)
	}
	if err := l.repo.Restore(ctx, lotID, volume); err != nil {
		if errors.Is(err, domain.ErrUnknownLot) {
			return err
		}
		return domain.NewPersistenceError("devolver lote", err)
	}
	return nil
}

// SetStatus activa o inactiva un lote; uno inactivo deja de ser elegible y la
// cabeza FIFO pasa al siguiente.
func (l *LotLedger) SetStatus(ctx context.Context, lotID, status string) (*entity.InventoryLot, error) {
	switch {
	case strings.EqualFold(status, entity.LotStatusActive):
		status = entity.LotStatusActive
	case strings.EqualFold(status, entity.LotStatusInactive):
		status = entity.LotStatusInactive
	default:
		return nil, fmt.Errorf("%w: estado de lote %q", domain.ErrInvalidInput, status)
	}
	if err := l.repo.SetStatus(ctx, lotID, status); err != nil {
		if errors.Is(err, domain.ErrUnknownLot) {
			return nil, err
		}
		return nil, domain.NewPersistenceError("cambiar estado de lote", err)
	}
	lot, err := l.repo.GetByIntakeLotID(ctx, lotID)
	if err != nil {
		return nil, domain.NewPersistenceError("buscar lote", err)
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownLot, lotID)
	}
	return lot, nil
}
