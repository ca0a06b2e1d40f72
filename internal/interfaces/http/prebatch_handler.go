package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/application/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain"
)

// PrebatchHandler maneja la estación de pesaje: plan, lotes y sesión del operador.
type PrebatchHandler struct {
	sessions *prebatch.SessionManager
	ledger   *prebatch.LotLedger
	plans    *prebatch.PlanUseCase
	log      zerolog.Logger
}

// NewPrebatchHandler construye el handler.
func NewPrebatchHandler(sessions *prebatch.SessionManager, ledger *prebatch.LotLedger, plans *prebatch.PlanUseCase, log zerolog.Logger) *PrebatchHandler {
	return &PrebatchHandler{sessions: sessions, ledger: ledger, plans: plans, log: log}
}

func (h *PrebatchHandler) session(c *fiber.Ctx) (*prebatch.Session, error) {
	username := GetUsername(c)
	if username == "" {
		return nil, domain.ErrUnauthorized
	}
	return h.sessions.Get(username), nil
}

// SetLotStatus godoc
// @Summary      Activa o inactiva un lote de inventario
// @Tags         prebatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        intake_lot_id  path  string                true  "lote de ingreso"
// @Param        body           body  dto.LotStatusRequest  true  "Active | Inactive"
// @Success      200  {object}  dto.LotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/prebatch/lots/{intake_lot_id}/status [put]
func (h *PrebatchHandler) SetLotStatus(c *fiber.Ctx) error {
	var in dto.LotStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lot, err := h.ledger.SetStatus(c.UserContext(), c.Params("intake_lot_id"), in.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("user", GetUsername(c)).Str("lot", lot.IntakeLotID).Str("status", lot.Status).Msg("estado de lote cambiado")
	return c.JSON(prebatch.ToLotResponse(lot))
}

// CloseSession godoc
// @Summary      Cierra la sesión de trabajo del operador
// @Description  Descarta selección y pesadas sin confirmar; los paquetes guardados no cambian.
// @Tags         prebatch
// @Security     Bearer
// @Success      204
// @Router       /api/prebatch/session [delete]
func (h *PrebatchHandler) CloseSession(c *fiber.Ctx) error {
	username := GetUsername(c)
	if username == "" {
		return respondError(c, h.log, domain.ErrUnauthorized)
	}
	h.sessions.Drop(username)
	return c.SendStatus(fiber.StatusNoContent)
}

// Lots godoc
// @Summary      Lotes elegibles de un ingrediente en orden FIFO
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Param        re_code           path   string  true   "código de ingrediente"
// @Param        include_inactive  query  bool    false  "incluir lotes inactivos"
// @Success      200  {array}  dto.LotResponse
// @Router       /api/prebatch/lots/{re_code} [get]
func (h *PrebatchHandler) Lots(c *fiber.Ctx) error {
	lots, err := h.ledger.EligibleLots(c.UserContext(), c.Params("re_code"), c.QueryBool("include_inactive", false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, prebatch.ToLotResponse(l))
	}
	return c.JSON(out)
}

// Plan godoc
// @Summary      Plan de paquetes para un requerimiento
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Param        required      query  string  true   "kg requeridos"
// @Param        package_size  query  string  false  "kg por paquete"
// @Param        packaged      query  string  false  "netos ya pesados, separados por coma"
// @Success      200  {object}  dto.PlanPreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/prebatch/plan [get]
func (h *PrebatchHandler) Plan(c *fiber.Ctx) error {
	required, err := decimal.NewFromString(c.Query("required"))
	if err != nil {
		return respondError(c, h.log, domain.ErrInvalidInput)
	}
	size := decimal.Zero
	if raw := c.Query("package_size"); raw != "" {
		if size, err = decimal.NewFromString(raw); err != nil {
			return respondError(c, h.log, domain.ErrInvalidInput)
		}
	}
	var packaged []decimal.Decimal
	if raw := c.Query("packaged"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			v, err := decimal.NewFromString(strings.TrimSpace(part))
			if err != nil {
				return respondError(c, h.log, domain.ErrInvalidInput)
			}
			packaged = append(packaged, v)
		}
	}
	out, err := h.plans.Preview(required, size, packaged)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Batches godoc
// @Summary      Lotes de producción de un plan
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Param        plan_id  path  string  true  "plan"
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/prebatch/plans/{plan_id}/batches [get]
func (h *PrebatchHandler) Batches(c *fiber.Ctx) error {
	batches, err := h.plans.Batches(c.UserContext(), c.Params("plan_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, prebatch.ToBatchResponse(b))
	}
	return c.JSON(out)
}

// Ingredients godoc
// @Summary      Resumen de ingredientes del plan
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Param        plan_id  path  string  true  "plan"
// @Success      200  {array}  dto.IngredientSummaryResponse
// @Router       /api/prebatch/plans/{plan_id}/ingredients [get]
func (h *PrebatchHandler) Ingredients(c *fiber.Ctx) error {
	out, err := h.plans.IngredientSummary(c.UserContext(), c.Params("plan_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Session godoc
// @Summary      Vista de la sesión de pesaje del operador
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/prebatch/session [get]
func (h *PrebatchHandler) Session(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(s.View())
}

// SessionLots godoc
// @Summary      Lotes elegibles del ingrediente en curso, descontando lo ya atribuido
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LotResponse
// @Router       /api/prebatch/session/lots [get]
func (h *PrebatchHandler) SessionLots(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	lots, err := s.Lots(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, prebatch.ToLotResponse(l))
	}
	return c.JSON(out)
}

// SelectBatch godoc
// @Summary      Seleccionar lote de producción
// @Tags         prebatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SelectBatchRequest  true  "plan_id, batch_id"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/prebatch/session/batch [post]
func (h *PrebatchHandler) SelectBatch(c *fiber.Ctx) error {
	var in dto.SelectBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := s.SelectBatch(c.UserContext(), in.PlanID, in.BatchID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(s.View())
}

// SelectIngredient godoc
// @Summary      Seleccionar ingrediente; preselecciona la cabeza FIFO
// @Tags         prebatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SelectIngredientRequest  true  "re_code"
// @Success      200  {object}  dto.SelectionResponse
// @Router       /api/prebatch/session/ingredient [post]
func (h *PrebatchHandler) SelectIngredient(c *fiber.Ctx) error {
	var in dto.SelectIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := s.SelectIngredient(c.UserContext(), in.ReCode)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ScanLot godoc
// @Summary      Escanear lote de inventario
// @Tags         prebatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanLotRequest  true  "intake_lot_id"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "violación FIFO con expected_lot_id"
// @Router       /api/prebatch/session/lot [post]
func (h *PrebatchHandler) ScanLot(c *fiber.Ctx) error {
	var in dto.ScanLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	lot, err := s.ScanLot(c.UserContext(), in.IntakeLotID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(prebatch.ToLotResponse(lot))
}

// AddOrigin godoc
// @Summary      Atribuir el peso nuevo al lote seleccionado
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.OriginResponse
// @Router       /api/prebatch/session/origins [post]
func (h *PrebatchHandler) AddOrigin(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	o, err := s.AddOrigin(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OriginResponse{IntakeLotID: o.IntakeLotID, TakeVolume: o.TakeVolume})
}

// RemoveOrigin godoc
// @Summary      Quitar un origen del paquete en curso
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Param        index  path  int  true  "posición (desde 0)"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/prebatch/session/origins/{index} [delete]
func (h *PrebatchHandler) RemoveOrigin(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("index")
	if err != nil {
		return respondError(c, h.log, domain.ErrInvalidInput)
	}
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := s.RemoveOrigin(idx); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(s.View())
}

// Done godoc
// @Summary      Confirmar el paquete pesado
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.CommitResponse
// @Failure      503  {object}  dto.ErrorResponse  "retryable"
// @Router       /api/prebatch/session/done [post]
func (h *PrebatchHandler) Done(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := s.Done(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Cancelar un paquete y devolver su peso a los lotes de origen
// @Tags         prebatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "id o batch_record_id"
// @Param        body  body  dto.CancelPackageRequest  true  "token de confirmación"
// @Success      200  {object}  dto.CancelResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/prebatch/records/{id} [delete]
func (h *PrebatchHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelPackageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := s.Cancel(c.UserContext(), c.Params("id"), in.Token)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// UnlockPackageSize godoc
// @Summary      Desbloquear el tamaño de paquete con la contraseña del operador
// @Tags         prebatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UnlockRequest  true  "password"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/prebatch/session/package-size/unlock [post]
func (h *PrebatchHandler) UnlockPackageSize(c *fiber.Ctx) error {
	var in dto.UnlockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := s.UnlockPackageSize(c.UserContext(), in.Password); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(s.View())
}

// LockPackageSize godoc
// @Summary      Volver a bloquear el tamaño de paquete
// @Tags         prebatch
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/prebatch/session/package-size/lock [post]
func (h *PrebatchHandler) LockPackageSize(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	s.LockPackageSize()
	return c.JSON(s.View())
}

// SetPackageSize godoc
// @Summary      Cambiar el tamaño de paquete (requiere desbloqueo)
// @Tags         prebatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PackageSizeRequest  true  "package_size"
// @Success      200  {object}  dto.SessionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/prebatch/session/package-size [put]
func (h *PrebatchHandler) SetPackageSize(c *fiber.Ctx) error {
	var in dto.PackageSizeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.session(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := s.SetPackageSize(in.PackageSize); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(s.View())
}
