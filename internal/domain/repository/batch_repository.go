package repository

import (
	"context"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// BatchRepository define el puerto de lectura de lotes de producción de un plan.
type BatchRepository interface {
	// ListByPlan devuelve los lotes ordenados por BatchID.
	ListByPlan(ctx context.Context, planID string) ([]*entity.ProductionBatch, error)
	MarkPrepared(ctx context.Context, batchID string) error
}
