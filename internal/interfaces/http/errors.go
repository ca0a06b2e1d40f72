package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// El orden importa: se toma la primera coincidencia.
var errorTable = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNoSelection, fiber.StatusBadRequest, "NO_SELECTION"},
	{domain.ErrMissingLotSelection, fiber.StatusBadRequest, "MISSING_LOT"},
	{domain.ErrNothingToAdd, fiber.StatusBadRequest, "NOTHING_TO_ADD"},
	{domain.ErrNoVolumeRecorded, fiber.StatusBadRequest, "NO_VOLUME"},
	{domain.ErrOriginsExceedReading, fiber.StatusBadRequest, "ORIGINS_EXCEED_READING"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrStaleScale, fiber.StatusConflict, "STALE_SCALE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnknownLot, fiber.StatusNotFound, "UNKNOWN_LOT"},
	{domain.ErrUnknownScale, fiber.StatusNotFound, "UNKNOWN_SCALE"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrFieldLocked, fiber.StatusForbidden, "FIELD_LOCKED"},
	{domain.ErrInvalidConfirmation, fiber.StatusForbidden, "INVALID_CONFIRMATION"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
}

// respondError traduce un error de dominio a status HTTP y dto.ErrorResponse.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var fifo *domain.FIFOViolationError
	if errors.As(err, &fifo) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:           "FIFO_VIOLATION",
			Message:        err.Error(),
			ExpectedLotID:  fifo.ExpectedLotID,
			ExpectedExpiry: fifo.ExpectedExpiry,
		})
	}
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		log.Error().Err(err).Str("path", c.Path()).Msg("fallo de persistencia")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:      "PERSISTENCE",
			Message:   "no se pudo guardar, intente de nuevo",
			Retryable: perr.Retryable,
		})
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no mapeado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
