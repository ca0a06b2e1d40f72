package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScaleResponse estado de una balanza para la UI de planta.
type ScaleResponse struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	Capacity     decimal.Decimal `json:"capacity"`
	Tolerance    decimal.Decimal `json:"tolerance"`
	Precision    int             `json:"precision"`
	Connected    bool            `json:"connected"`
	Stable       bool            `json:"stable"`
	Error        bool            `json:"error"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Value        decimal.Decimal `json:"value"`
	Display      string          `json:"display"`
	Active       bool            `json:"active"`
	LastSeenAt   *time.Time      `json:"last_seen_at,omitempty"`
}

// ScaleReadingRequest body para POST /api/scales/:id/readings (ingesta manual o de pasarela).
type ScaleReadingRequest struct {
	Weight   decimal.Decimal `json:"weight"`
	Unit     string          `json:"unit"`
	Stable   bool            `json:"stable"`
	ErrorMsg string          `json:"error_msg,omitempty"`
}

// ToleranceResponse resultado de la verificación de tolerancia.
type ToleranceResponse struct {
	ScaleID   string          `json:"scale_id"`
	Target    decimal.Decimal `json:"target"`
	Actual    decimal.Decimal `json:"actual"`
	Tolerance decimal.Decimal `json:"tolerance"`
	Within    bool            `json:"within"`
}
