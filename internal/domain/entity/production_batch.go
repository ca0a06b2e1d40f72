package entity

import "github.com/shopspring/decimal"

// ProductionBatch es una corrida de producción dentro de un plan.
// Prepared pasa a true cuando todos sus ingredientes están Done.
type ProductionBatch struct {
	BatchID   string
	PlanID    string
	SKUID     string
	BatchSize decimal.Decimal
	Prepared  bool
	Status    string
}
