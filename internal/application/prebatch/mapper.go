package prebatch

import (
	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	rules "github.com/jhoicas/Prebatch-api/internal/domain/prebatch"
)

// ToLotResponse mapea un lote a su DTO.
func ToLotResponse(l *entity.InventoryLot) dto.LotResponse {
	return dto.LotResponse{
		IntakeLotID:       l.IntakeLotID,
		ReCode:            l.ReCode,
		LotNumber:         l.LotNumber,
		WarehouseLocation: l.WarehouseLocation,
		RemainingVolume:   l.RemainingVolume,
		ExpireDate:        l.ExpireDate,
		Status:            l.Status,
	}
}

// ToRecordResponse mapea un paquete a su DTO.
func ToRecordResponse(r *entity.PrebatchRecord) dto.RecordResponse {
	origins := make([]dto.OriginResponse, 0, len(r.Origins))
	for _, o := range r.EffectiveOrigins() {
		origins = append(origins, dto.OriginResponse{IntakeLotID: o.IntakeLotID, TakeVolume: o.TakeVolume})
	}
	return dto.RecordResponse{
		ID:            r.ID,
		BatchRecordID: r.BatchRecordID,
		PlanID:        r.PlanID,
		BatchID:       r.BatchID,
		ReCode:        r.ReCode,
		PackageNo:     r.PackageNo,
		TotalPackages: r.TotalPackages,
		NetVolume:     r.NetVolume,
		TotalVolume:   r.TotalVolume,
		Origins:       origins,
		ScaleID:       r.ScaleID,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
	}
}

// ToScaleResponse mapea el estado de una balanza a su DTO.
func ToScaleResponse(s entity.ScaleState, active bool) dto.ScaleResponse {
	resp := dto.ScaleResponse{
		ID:           s.ID,
		Label:        s.Label,
		Capacity:     s.Capacity,
		Tolerance:    s.Tolerance,
		Precision:    s.Precision,
		Connected:    s.Connected,
		Stable:       s.Stable,
		Error:        s.Error,
		ErrorMessage: s.ErrorMessage,
		Value:        s.LastValue,
		Display:      s.Display(),
		Active:       active,
	}
	if !s.LastSeenAt.IsZero() {
		seen := s.LastSeenAt
		resp.LastSeenAt = &seen
	}
	return resp
}

func toRequirementResponse(r *entity.IngredientRequirement) dto.RequirementResponse {
	return dto.RequirementResponse{
		ReCode:            r.ReCode,
		IngredientName:    r.IngredientName,
		RequiredVolume:    r.PerBatchVolume,
		PackagedVolume:    r.TotalPackagedVolume,
		PackageSize:       r.PackageSize,
		Status:            r.Status.String(),
		WarehouseLocation: r.WarehouseLocation,
	}
}

func toPlanResponse(plan []rules.PlannedPackage) []dto.PlannedPackageResponse {
	out := make([]dto.PlannedPackageResponse, 0, len(plan))
	for _, p := range plan {
		pr := dto.PlannedPackageResponse{PackageNo: p.PackageNo, Target: p.Target, Done: p.Done}
		if p.Done {
			actual := p.Actual
			pr.Actual = &actual
		}
		out = append(out, pr)
	}
	return out
}

// ToBatchResponse mapea un lote de producción a su DTO.
func ToBatchResponse(b *entity.ProductionBatch) dto.BatchResponse {
	return dto.BatchResponse{
		BatchID:   b.BatchID,
		PlanID:    b.PlanID,
		SKUID:     b.SKUID,
		BatchSize: b.BatchSize,
		Prepared:  b.Prepared,
		Status:    b.Status,
	}
}
