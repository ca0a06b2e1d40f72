package prebatch

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// OriginComposer acumula los orígenes de un paquete en curso.
// Cada origen toma el delta entre la lectura viva y lo ya atribuido.
// No es seguro para uso concurrente; la sesión lo serializa.
type OriginComposer struct {
	origins []entity.PackageOrigin
}

// Total es la suma de los orígenes.
func (c *OriginComposer) Total() decimal.Decimal {
	total := decimal.Zero
	for _, o := range c.origins {
		total = total.Add(o.TakeVolume)
	}
	return total
}

// Delta es la lectura viva menos lo atribuido.
func (c *OriginComposer) Delta(live decimal.Decimal) decimal.Decimal {
	return live.Sub(c.Total())
}

// Origins devuelve una copia de los orígenes.
func (c *OriginComposer) Origins() []entity.PackageOrigin {
	out := make([]entity.PackageOrigin, len(c.origins))
	copy(out, c.origins)
	return out
}

// Len es la cantidad de orígenes.
func (c *OriginComposer) Len() int { return len(c.origins) }

// PendingByLot agrupa el volumen atribuido por lote.
func (c *OriginComposer) PendingByLot() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.origins))
	for _, o := range c.origins {
		out[o.IntakeLotID] = out[o.IntakeLotID].Add(o.TakeVolume)
	}
	return out
}

// Add atribuye el delta actual al lote indicado.
func (c *OriginComposer) Add(lotID string, live decimal.Decimal) (entity.PackageOrigin, error) {
	if lotID == "" {
		return entity.PackageOrigin{}, domain.ErrMissingLotSelection
	}
	delta := c.Delta(live)
	if !delta.GreaterThan(Epsilon) {
		return entity.PackageOrigin{}, domain.ErrNothingToAdd
	}
	o := entity.PackageOrigin{IntakeLotID: lotID, TakeVolume: delta}
	c.origins = append(c.origins, o)
	return o, nil
}

// Remove quita el origen en la posición index.
func (c *OriginComposer) Remove(index int) error {
	if index < 0 || index >= len(c.origins) {
		return fmt.Errorf("%w: origen %d fuera de rango", domain.ErrInvalidInput, index)
	}
	c.origins = append(c.origins[:index], c.origins[index+1:]...)
	return nil
}

// Reset descarta todos los orígenes.
func (c *OriginComposer) Reset() { c.origins = nil }

// Finalize calcula la lista definitiva sin modificar el compositor: si queda delta
// positivo se atribuye a lotID. Falla si el delta no tiene lote, si no hay peso,
// o si lo atribuido supera la lectura.
func (c *OriginComposer) Finalize(lotID string, live decimal.Decimal) ([]entity.PackageOrigin, error) {
	out := c.Origins()
	delta := c.Delta(live)
	switch {
	case delta.GreaterThan(Epsilon):
		if lotID == "" {
			return nil, domain.ErrMissingLotSelection
		}
		out = append(out, entity.PackageOrigin{IntakeLotID: lotID, TakeVolume: delta})
	case delta.LessThan(Epsilon.Neg()):
		return nil, domain.ErrOriginsExceedReading
	}
	total := decimal.Zero
	for _, o := range out {
		total = total.Add(o.TakeVolume)
	}
	if !total.GreaterThan(Epsilon) {
		return nil, domain.ErrNoVolumeRecorded
	}
	return out, nil
}
