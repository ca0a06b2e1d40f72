package prebatch

import (
	"context"

	"github.com/shopspring/decimal"
)

// CredentialVerifier verifica la contraseña de un operador (desbloqueo del tamaño de paquete).
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, username, password string) error
}

// Recorder recibe eventos del motor para métricas. Las implementaciones no deben bloquear.
type Recorder interface {
	PackageCommitted(reCode string, net decimal.Decimal)
	PackageCancelled(reCode string)
	FIFOViolation(reCode string)
	InventoryError(op string)
	WatchdogTripped(scaleID string)
	ScaleReading(scaleID string, weight decimal.Decimal, stale bool)
}

// NopRecorder descarta todos los eventos.
type NopRecorder struct{}

func (NopRecorder) PackageCommitted(string, decimal.Decimal)   {}
func (NopRecorder) PackageCancelled(string)                    {}
func (NopRecorder) FIFOViolation(string)                       {}
func (NopRecorder) InventoryError(string)                      {}
func (NopRecorder) WatchdogTripped(string)                     {}
func (NopRecorder) ScaleReading(string, decimal.Decimal, bool) {}
