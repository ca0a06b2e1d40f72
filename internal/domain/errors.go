package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Pre-batch
	ErrUnknownLot           = errors.New("lote desconocido")
	ErrUnknownScale         = errors.New("balanza desconocida")
	ErrNoSelection          = errors.New("no hay lote de producción o ingrediente seleccionado")
	ErrMissingLotSelection  = errors.New("seleccione o escanee un lote de inventario")
	ErrNothingToAdd         = errors.New("no hay peso nuevo para atribuir")
	ErrNoVolumeRecorded     = errors.New("no hay peso registrado para el paquete")
	ErrOriginsExceedReading = errors.New("el peso atribuido supera la lectura de la balanza")
	ErrFieldLocked          = errors.New("el tamaño de paquete está bloqueado")
	ErrInvalidConfirmation  = errors.New("confirmación inválida")
	ErrStaleScale           = errors.New("la balanza no reporta lecturas recientes")
	ErrFIFOViolation        = errors.New("el lote no respeta el orden FIFO")
	ErrPersistence          = errors.New("error de persistencia")
)

// FIFOViolationError indica que el lote escaneado no es la cabeza FIFO.
// Lleva el lote esperado para que el operador escanee el correcto.
type FIFOViolationError struct {
	ScannedLotID   string
	ExpectedLotID  string
	ExpectedExpiry *time.Time
}

func (e *FIFOViolationError) Error() string {
	return fmt.Sprintf("violación FIFO: se escaneó %s, se esperaba %s", e.ScannedLotID, e.ExpectedLotID)
}

func (e *FIFOViolationError) Unwrap() error { return ErrFIFOViolation }

// PersistenceError envuelve un fallo del backend. Retryable indica que la
// operación puede reintentarse sin efectos parciales.
type PersistenceError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// NewPersistenceError construye un PersistenceError reintentable.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Retryable: true, Err: err}
}
