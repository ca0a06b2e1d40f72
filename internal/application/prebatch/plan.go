package prebatch

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	rules "github.com/jhoicas/Prebatch-api/internal/domain/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

// PlanUseCase consultas de solo lectura sobre un plan de producción.
type PlanUseCase struct {
	batches      repository.BatchRepository
	requirements repository.RequirementRepository
}

// NewPlanUseCase construye el caso de uso.
func NewPlanUseCase(batches repository.BatchRepository, requirements repository.RequirementRepository) *PlanUseCase {
	return &PlanUseCase{batches: batches, requirements: requirements}
}

// Batches lista los lotes de producción del plan.
func (uc *PlanUseCase) Batches(ctx context.Context, planID string) ([]*entity.ProductionBatch, error) {
	out, err := uc.batches.ListByPlan(ctx, planID)
	if err != nil {
		return nil, domain.NewPersistenceError("listar lotes de producción", err)
	}
	return out, nil
}

// IngredientSummary agrega requerido y empacado por ingrediente en todo el plan.
func (uc *PlanUseCase) IngredientSummary(ctx context.Context, planID string) ([]dto.IngredientSummaryResponse, error) {
	rows, err := uc.requirements.SummaryByPlan(ctx, planID)
	if err != nil {
		return nil, domain.NewPersistenceError("resumen de ingredientes", err)
	}
	out := make([]dto.IngredientSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.IngredientSummaryResponse{
			ReCode:              r.ReCode,
			IngredientName:      r.IngredientName,
			TotalRequiredVolume: r.TotalRequiredVolume,
			TotalPackagedVolume: r.TotalPackagedVolume,
			BatchCount:          r.BatchCount,
			DoneBatches:         r.DoneBatches,
		})
	}
	return out, nil
}

// Preview planifica los paquetes de un requerimiento sin abrir sesión.
// packaged[i] es el neto real del paquete i+1; cero significa pendiente.
func (uc *PlanUseCase) Preview(required, size decimal.Decimal, packaged []decimal.Decimal) (*dto.PlanPreviewResponse, error) {
	if err := rules.CheckPlan(required, size); err != nil {
		return nil, err
	}
	if len(packaged) > rules.MaxPackages {
		return nil, fmt.Errorf("%w: más de %d paquetes pesados", domain.ErrInvalidInput, rules.MaxPackages)
	}
	done := make([]*entity.PrebatchRecord, 0, len(packaged))
	for i, net := range packaged {
		if net.IsNegative() {
			return nil, fmt.Errorf("%w: paquete %d con neto negativo", domain.ErrInvalidInput, i+1)
		}
		if net.IsPositive() {
			done = append(done, &entity.PrebatchRecord{PackageNo: i + 1, NetVolume: net})
		}
	}
	return &dto.PlanPreviewResponse{
		TotalPackages: rules.TotalPackages(required, size),
		NextPackageNo: rules.NextPackageNo(rules.PackageNumbers(done)),
		Target:        rules.TargetWeight(required, size, rules.PackagedVolume(done)),
		Packages:      toPlanResponse(rules.Plan(required, size, done)),
	}, nil
}
