package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/avicola-api/internal/application/dto"
	"github.com/jhoicas/avicola-api/internal/application/ledger"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
)

// MovementHandler maneja las peticiones HTTP de movimientos de aves (protegido).
type MovementHandler struct {
	uc *ledger.UseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

func endpointInput(e *dto.EndpointDTO) ledger.EndpointInput {
	if e == nil {
		return ledger.EndpointInput{}
	}
	return ledger.EndpointInput{
		RecordID:  e.RecordID,
		LoteID:    e.LoteID,
		FarmID:    e.FarmID,
		NucleusID: e.NucleusID,
		ShedID:    e.ShedID,
	}
}

// Create godoc
// @Summary      Registrar intención de movimiento (PENDING)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "type, origin/destination, quantities, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	m, err := h.uc.CreateMovement(c.Context(), companyID, actorID, ledger.MovementInput{
		Type:           in.Type,
		AdjustmentKind: in.AdjustmentKind,
		Origin:         endpointInput(in.Origin),
		Destination:    endpointInput(in.Destination),
		Quantities:     entity.Counts(in.Quantities),
		Reason:         in.Reason,
		Notes:          in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(m))
}

// Get godoc
// @Summary      Consultar movimiento por ID
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	m, err := h.uc.GetMovement(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Process godoc
// @Summary      Procesar movimiento PENDING (aplica cantidades exactamente una vez)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessMovementRequest  false  "auto_create_destination (default true)"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/process [post]
func (h *MovementHandler) Process(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	autoCreate := true
	var in dto.ProcessMovementRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
		if in.AutoCreateDestination != nil {
			autoCreate = *in.AutoCreateDestination
		}
	}
	m, err := h.uc.ProcessMovement(c.Context(), companyID, actorID, c.Params("id"), autoCreate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// Cancel godoc
// @Summary      Cancelar movimiento PENDING (sin efectos sobre inventario)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CancelMovementRequest  false  "reason"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/cancel [post]
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CancelMovementRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	m, err := h.uc.CancelMovement(c.Context(), companyID, actorID, c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// QuickTransfer godoc
// @Summary      Traslado rápido: resuelve origen, crea y procesa en un solo viaje
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickTransferRequest  true  "lote_id, destination; quantities omitido = todo lo disponible"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/quick-transfer [post]
func (h *MovementHandler) QuickTransfer(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.QuickTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.QuickTransferInput{
		LoteID:             in.LoteID,
		Origin:             endpointInput(in.Origin),
		Destination:        endpointInput(&in.Destination),
		Reason:             in.Reason,
		ProcessImmediately: in.ProcessImmediately == nil || *in.ProcessImmediately,
	}
	if in.Quantities != nil {
		qty := entity.Counts(*in.Quantities)
		input.Quantities = &qty
	}
	m, err := h.uc.QuickTransfer(c.Context(), companyID, actorID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(m))
}

// ListByLote godoc
// @Summary      Listar movimientos de un lote (recientes primero)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx. 100, default 20"
// @Param        offset  query  int  false  "default 0"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/lotes/{loteId}/movements [get]
func (h *MovementHandler) ListByLote(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.uc.ListMovements(c.Context(), companyID, c.Params("loteId"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
