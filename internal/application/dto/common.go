package dto

import "time"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	// ExpectedLotID y ExpectedExpiry se informan en violaciones FIFO.
	ExpectedLotID  string     `json:"expected_lot_id,omitempty"`
	ExpectedExpiry *time.Time `json:"expected_expiry,omitempty"`
}
