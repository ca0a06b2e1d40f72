package repository

import (
	"context"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// RequirementRepository define el puerto de persistencia de requerimientos de ingredientes.
type RequirementRepository interface {
	ListByBatch(ctx context.Context, batchID string) ([]*entity.IngredientRequirement, error)
	SummaryByPlan(ctx context.Context, planID string) ([]*entity.IngredientSummary, error)
	SetStatus(ctx context.Context, batchID, reCode string, status entity.RequirementStatus) error
}
