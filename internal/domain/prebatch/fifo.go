// Package prebatch contiene las reglas puras de asignación de pre-batch:
// orden FIFO de lotes, planificación de paquetes y composición de orígenes.
package prebatch

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// Epsilon es la tolerancia de comparación de pesos en kg.
var Epsilon = decimal.New(1, -4)

var fold = cases.Fold()

// SameID compara identificadores de lote o ingrediente sin distinguir mayúsculas.
func SameID(a, b string) bool {
	return fold.String(a) == fold.String(b)
}

// SortFIFO ordena por vencimiento ascendente; los lotes sin vencimiento van al final
// y los empates se resuelven por IntakeLotID.
func SortFIFO(lots []*entity.InventoryLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpireDate == nil && b.ExpireDate != nil:
			return false
		case a.ExpireDate != nil && b.ExpireDate == nil:
			return true
		case a.ExpireDate != nil && b.ExpireDate != nil && !a.ExpireDate.Equal(*b.ExpireDate):
			return a.ExpireDate.Before(*b.ExpireDate)
		}
		return a.IntakeLotID < b.IntakeLotID
	})
}

// Available devuelve el volumen del lote descontando lo ya atribuido en el paquete en curso.
func Available(lot *entity.InventoryLot, pending map[string]decimal.Decimal) decimal.Decimal {
	avail := lot.RemainingVolume
	for id, v := range pending {
		if SameID(id, lot.IntakeLotID) {
			avail = avail.Sub(v)
		}
	}
	return avail
}

// HasVolume indica si al lote le queda volumen. Sin consumos pendientes basta con
// remain > 0; con pendientes sobre el lote se ignora un residuo menor a Epsilon.
func HasVolume(lot *entity.InventoryLot, pending map[string]decimal.Decimal) bool {
	avail := Available(lot, pending)
	if avail.Equal(lot.RemainingVolume) {
		return avail.IsPositive()
	}
	return avail.GreaterThan(Epsilon)
}

// EligibleLots filtra los lotes del ingrediente con volumen disponible y los
// devuelve en orden FIFO. Los lotes inactivos solo se incluyen si includeInactive.
func EligibleLots(lots []*entity.InventoryLot, reCode string, includeInactive bool, pending map[string]decimal.Decimal) []*entity.InventoryLot {
	out := make([]*entity.InventoryLot, 0, len(lots))
	for _, l := range lots {
		if !SameID(l.ReCode, reCode) {
			continue
		}
		if !includeInactive && !l.IsActive() {
			continue
		}
		if !HasVolume(l, pending) {
			continue
		}
		out = append(out, l)
	}
	SortFIFO(out)
	return out
}

// Head devuelve el primer lote FIFO, o nil si no hay elegibles.
func Head(eligible []*entity.InventoryLot) *entity.InventoryLot {
	if len(eligible) == 0 {
		return nil
	}
	return eligible[0]
}

// IsFIFOCompliant es true si no hay elegibles, si la cabeza no tiene vencimiento,
// o si el lote es la cabeza.
func IsFIFOCompliant(lotID string, eligible []*entity.InventoryLot) bool {
	head := Head(eligible)
	if head == nil || head.ExpireDate == nil {
		return true
	}
	return SameID(lotID, head.IntakeLotID)
}

// FindLot busca un lote por id sin distinguir mayúsculas.
func FindLot(lots []*entity.InventoryLot, lotID string) *entity.InventoryLot {
	for _, l := range lots {
		if SameID(l.IntakeLotID, lotID) {
			return l
		}
	}
	return nil
}
