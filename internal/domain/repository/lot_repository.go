package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia del ledger de lotes.
// Consume y Restore deben ser atómicos por lote.
type LotRepository interface {
	ListByReCode(ctx context.Context, reCode string) ([]*entity.InventoryLot, error)
	// GetByIntakeLotID devuelve (nil, nil) si el lote no existe.
	GetByIntakeLotID(ctx context.Context, intakeLotID string) (*entity.InventoryLot, error)
	// Consume descuenta volume solo si remain >= volume.
	// Devuelve domain.ErrUnknownLot o domain.ErrInsufficientStock.
	Consume(ctx context.Context, intakeLotID string, volume decimal.Decimal) error
	Restore(ctx context.Context, intakeLotID string, volume decimal.Decimal) error
	// SetStatus cambia el estado Active/Inactive. Devuelve domain.ErrUnknownLot.
	SetStatus(ctx context.Context, intakeLotID, status string) error
}
