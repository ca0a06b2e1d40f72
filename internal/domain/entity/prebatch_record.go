package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackageOrigin es la porción de un paquete tomada de un lote de inventario.
type PackageOrigin struct {
	IntakeLotID string
	TakeVolume  decimal.Decimal
}

// PrebatchRecord es un paquete pesado y confirmado.
// NetVolume es siempre la suma de TakeVolume de sus orígenes.
type PrebatchRecord struct {
	ID            string
	BatchRecordID string // {batch_id}-{re_code}-{package_no}
	PlanID        string
	BatchID       string
	ReCode        string
	PackageNo     int
	TotalPackages int
	NetVolume     decimal.Decimal
	TotalVolume   decimal.Decimal // volumen total requerido por el lote al momento de pesar
	Origins       []PackageOrigin
	IntakeLotID   string // lote principal, para registros anteriores a los orígenes múltiples
	ScaleID       string
	CreatedBy     string
	CreatedAt     time.Time
}

// EffectiveOrigins devuelve los orígenes; si no hay, usa el lote principal por el neto.
func (r *PrebatchRecord) EffectiveOrigins() []PackageOrigin {
	if len(r.Origins) > 0 {
		return r.Origins
	}
	if r.IntakeLotID == "" || !r.NetVolume.IsPositive() {
		return nil
	}
	return []PackageOrigin{{IntakeLotID: r.IntakeLotID, TakeVolume: r.NetVolume}}
}
