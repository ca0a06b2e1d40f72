package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScaleState es el estado observado de una balanza física.
type ScaleState struct {
	ID           string
	Label        string
	Capacity     decimal.Decimal // kg máximos de la banda
	Tolerance    decimal.Decimal // kg
	Precision    int             // decimales a mostrar
	Connected    bool
	Stable       bool
	Error        bool
	ErrorMessage string
	LastValue    decimal.Decimal // kg
	LastSeenAt   time.Time
}

// Display devuelve la lectura formateada o "error" si la balanza está en falla.
func (s ScaleState) Display() string {
	if s.Error {
		return "error"
	}
	return s.LastValue.StringFixed(int32(s.Precision))
}

// ScaleReading es una lectura cruda recibida del transporte de balanzas.
type ScaleReading struct {
	ScaleID    string
	Weight     decimal.Decimal
	Unit       string // kg, g
	Stable     bool
	Error      bool
	ErrorMsg   string
	ReceivedAt time.Time
}
