package entity

import "github.com/shopspring/decimal"

// RequirementStatus avanza Pending -> InProgress -> Done.
// Solo la cancelación de un paquete puede regresar Done a InProgress.
type RequirementStatus int

const (
	RequirementPending    RequirementStatus = 0
	RequirementInProgress RequirementStatus = 1
	RequirementDone       RequirementStatus = 2
)

func (s RequirementStatus) String() string {
	switch s {
	case RequirementPending:
		return "pending"
	case RequirementInProgress:
		return "in_progress"
	case RequirementDone:
		return "done"
	default:
		return "unknown"
	}
}

// IngredientRequirement es la cantidad de un ingrediente que necesita un lote de producción.
type IngredientRequirement struct {
	ID                  string
	PlanID              string
	BatchID             string
	ReCode              string
	IngredientName      string
	MatSapCode          string
	PerBatchVolume      decimal.Decimal // kg requeridos por este lote de producción
	TotalRequiredVolume decimal.Decimal // kg requeridos en todo el plan
	TotalPackagedVolume decimal.Decimal
	PackageSize         decimal.Decimal // tamaño de paquete estándar; cero = un solo paquete
	BatchCount          int
	WarehouseLocation   string
	Status              RequirementStatus
}

// IngredientSummary agrega los requerimientos de un ingrediente a nivel de plan.
type IngredientSummary struct {
	PlanID              string
	ReCode              string
	IngredientName      string
	TotalRequiredVolume decimal.Decimal
	TotalPackagedVolume decimal.Decimal
	BatchCount          int
	DoneBatches         int
}
