package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de inventario.
const (
	LotStatusActive   = "Active"
	LotStatusInactive = "Inactive"
)

// InventoryLot es un lote físico recibido de materia prima (tabla ingredient_intake_lists).
// RemainingVolume se expresa en kg y nunca es negativo.
type InventoryLot struct {
	IntakeLotID       string
	ReCode            string
	MatSapCode        string
	LotNumber         string
	WarehouseLocation string
	RemainingVolume   decimal.Decimal
	ExpireDate        *time.Time // nil = sin fecha de vencimiento
	Status            string     // Active, Inactive
	UpdatedAt         time.Time
}

// IsActive indica si el lote participa en la asignación normal.
func (l *InventoryLot) IsActive() bool {
	return l.Status == "" || l.Status == LotStatusActive
}
