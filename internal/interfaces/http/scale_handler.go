package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/application/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// ScaleHandler expone el banco de balanzas.
type ScaleHandler struct {
	scales *prebatch.ScaleRouter
	log    zerolog.Logger
}

// NewScaleHandler construye el handler.
func NewScaleHandler(scales *prebatch.ScaleRouter, log zerolog.Logger) *ScaleHandler {
	return &ScaleHandler{scales: scales, log: log}
}

// List godoc
// @Summary      Estado de las balanzas
// @Tags         scales
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ScaleResponse
// @Router       /api/scales [get]
func (h *ScaleHandler) List(c *fiber.Ctx) error {
	active := h.scales.Active()
	states := h.scales.States()
	out := make([]dto.ScaleResponse, 0, len(states))
	for _, s := range states {
		out = append(out, prebatch.ToScaleResponse(s, s.ID == active))
	}
	return c.JSON(out)
}

// PostReading godoc
// @Summary      Ingresar una lectura manual
// @Tags         scales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "scale-01, scale-02, scale-03"
// @Param        body  body  dto.ScaleReadingRequest  true  "weight, unit, stable"
// @Success      202   {object}  dto.ScaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/scales/{id}/readings [post]
func (h *ScaleHandler) PostReading(c *fiber.Ctx) error {
	var in dto.ScaleReadingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	err := h.scales.OnReading(entity.ScaleReading{
		ScaleID:    id,
		Weight:     in.Weight,
		Unit:       in.Unit,
		Stable:     in.Stable,
		Error:      in.ErrorMsg != "",
		ErrorMsg:   in.ErrorMsg,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	st, _ := h.scales.State(id)
	return c.Status(fiber.StatusAccepted).JSON(prebatch.ToScaleResponse(st, st.ID == h.scales.Active()))
}

// Tolerance godoc
// @Summary      Verificar tolerancia de una lectura
// @Tags         scales
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true  "balanza"
// @Param        target  query  string  true  "kg objetivo"
// @Param        actual  query  string  true  "kg leídos"
// @Success      200  {object}  dto.ToleranceResponse
// @Router       /api/scales/{id}/tolerance [get]
func (h *ScaleHandler) Tolerance(c *fiber.Ctx) error {
	target, err1 := decimal.NewFromString(c.Query("target"))
	actual, err2 := decimal.NewFromString(c.Query("actual"))
	if err1 != nil || err2 != nil {
		return respondError(c, h.log, domain.ErrInvalidInput)
	}
	id := c.Params("id")
	within, err := h.scales.IsWithinTolerance(id, target, actual)
	if err != nil {
		return respondError(c, h.log, err)
	}
	st, _ := h.scales.State(id)
	return c.JSON(dto.ToleranceResponse{
		ScaleID:   id,
		Target:    target,
		Actual:    actual,
		Tolerance: st.Tolerance,
		Within:    within,
	})
}

// streamKeepAlive es cada cuánto se escribe un comentario SSE para detectar clientes caídos.
const streamKeepAlive = 15 * time.Second

// Stream godoc
// @Summary      Cambios de estado de las balanzas (Server-Sent Events)
// @Tags         scales
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200  {object}  dto.ScaleResponse  "un evento scale por cambio"
// @Router       /api/scales/stream [get]
func (h *ScaleHandler) Stream(c *fiber.Ctx) error {
	updates, cancel := h.scales.Subscribe()
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()
		for {
			select {
			case st, ok := <-updates:
				if !ok {
					return
				}
				body, err := json.Marshal(prebatch.ToScaleResponse(st, st.ID == h.scales.Active()))
				if err != nil {
					h.log.Warn().Err(err).Str("scale_id", st.ID).Msg("serializar estado de balanza")
					continue
				}
				fmt.Fprintf(w, "event: scale\ndata: %s\n\n", body)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
