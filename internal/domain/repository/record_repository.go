package repository

import (
	"context"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// RecordRepository define el puerto de persistencia de paquetes pesados.
// Create guarda el registro y sus orígenes en una sola transacción.
type RecordRepository interface {
	Create(ctx context.Context, rec *entity.PrebatchRecord) error
	GetByID(ctx context.Context, id string) (*entity.PrebatchRecord, error)
	ListByBatch(ctx context.Context, batchID string) ([]*entity.PrebatchRecord, error)
	Delete(ctx context.Context, id string) error
}
