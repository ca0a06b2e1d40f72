package prebatch

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// MaxPackages es el máximo de paquetes por requerimiento.
const MaxPackages = 10000

var maxPackages = decimal.NewFromInt(MaxPackages)

// PlannedPackage es un paquete del plan con su objetivo y, si ya se pesó, su neto real.
type PlannedPackage struct {
	PackageNo int
	Target    decimal.Decimal
	Actual    decimal.Decimal
	Done      bool
}

// CheckPlan rechaza combinaciones que exceden MaxPackages.
func CheckPlan(required, size decimal.Decimal) error {
	if required.IsNegative() || size.IsNegative() {
		return fmt.Errorf("%w: volumen requerido y tamaño de paquete no pueden ser negativos", domain.ErrInvalidInput)
	}
	if !required.IsPositive() || !size.IsPositive() {
		return nil
	}
	if required.Div(size).Ceil().GreaterThan(maxPackages) {
		return fmt.Errorf("%w: %s kg en paquetes de %s kg supera %d paquetes",
			domain.ErrInvalidInput, required.String(), size.String(), MaxPackages)
	}
	return nil
}

// TotalPackages es ceil(required/size); un solo paquete si size <= 0; cero si required <= 0.
// Por encima de MaxPackages devuelve MaxPackages+1; CheckPlan rechaza esos planes.
func TotalPackages(required, size decimal.Decimal) int {
	if !required.IsPositive() {
		return 0
	}
	if !size.IsPositive() {
		return 1
	}
	n := required.Div(size).Ceil()
	if n.GreaterThan(maxPackages) {
		return MaxPackages + 1
	}
	return int(n.IntPart())
}

// Plan divide required en paquetes de tamaño size; el último lleva el resto.
// Los paquetes presentes en done se marcan con su neto real. Nunca devuelve más
// de MaxPackages entradas.
func Plan(required, size decimal.Decimal, done []*entity.PrebatchRecord) []PlannedPackage {
	n := min(TotalPackages(required, size), MaxPackages)
	if n == 0 {
		return nil
	}
	if !size.IsPositive() {
		size = required
	}
	byNo := make(map[int]*entity.PrebatchRecord, len(done))
	for _, r := range done {
		byNo[r.PackageNo] = r
	}
	out := make([]PlannedPackage, 0, n)
	remaining := required
	for i := 1; i <= n; i++ {
		target := decimal.Min(remaining, size)
		remaining = remaining.Sub(target)
		p := PlannedPackage{PackageNo: i, Target: target}
		if r, ok := byNo[i]; ok {
			p.Actual = r.NetVolume
			p.Done = true
		}
		out = append(out, p)
	}
	return out
}

// TargetWeight es el objetivo del próximo paquete: min(max(0, required-completed), size).
func TargetWeight(required, size, completed decimal.Decimal) decimal.Decimal {
	remaining := required.Sub(completed)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	if !size.IsPositive() {
		return remaining
	}
	return decimal.Min(remaining, size)
}

// NextPackageNo devuelve el menor entero positivo no usado, reutilizando huecos
// dejados por cancelaciones.
func NextPackageNo(existing []int) int {
	used := make(map[int]struct{}, len(existing))
	for _, n := range existing {
		used[n] = struct{}{}
	}
	for i := 1; ; i++ {
		if _, ok := used[i]; !ok {
			return i
		}
	}
}

// IsPackageSetComplete indica si el ingrediente terminó: el paquete recién pesado alcanza el total,
// o todos los números 1..total están presentes.
func IsPackageSetComplete(pkgNo, total int, existing []int) bool {
	if total <= 0 {
		return false
	}
	if pkgNo >= total {
		return true
	}
	used := make(map[int]struct{}, len(existing))
	for _, n := range existing {
		used[n] = struct{}{}
	}
	for i := 1; i <= total; i++ {
		if _, ok := used[i]; !ok {
			return false
		}
	}
	return true
}

// BatchRecordID arma el identificador legible del paquete.
func BatchRecordID(batchID, reCode string, pkgNo int) string {
	return fmt.Sprintf("%s-%s-%d", batchID, reCode, pkgNo)
}

// IngredientRecords filtra los registros de un ingrediente dentro de un lote de producción.
func IngredientRecords(records []*entity.PrebatchRecord, batchID, reCode string) []*entity.PrebatchRecord {
	var out []*entity.PrebatchRecord
	for _, r := range records {
		if r.BatchID == batchID && SameID(r.ReCode, reCode) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PackageNo < out[j].PackageNo })
	return out
}

// PackageNumbers extrae los números de paquete.
func PackageNumbers(records []*entity.PrebatchRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.PackageNo)
	}
	return out
}

// PackagedVolume suma los netos.
func PackagedVolume(records []*entity.PrebatchRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.NetVolume)
	}
	return total
}
