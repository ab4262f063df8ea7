package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/avicola-api/internal/application/dto"
	"github.com/jhoicas/avicola-api/internal/application/ledger"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP sobre registros de inventario (protegido).
type InventoryHandler struct {
	uc *ledger.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *ledger.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Create godoc
// @Summary      Crear registro de inventario (primera colocación de aves)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRecordRequest  true  "lote_id, farm_id, counts"
// @Success      201   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.CreateRecord(c.Context(), companyID, actorID, ledger.CreateRecordInput{
		LoteID:    in.LoteID,
		FarmID:    in.FarmID,
		NucleusID: in.NucleusID,
		ShedID:    in.ShedID,
		Counts:    entity.Counts(in.Counts),
		Notes:     in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewInventoryRecordResponse(rec))
}

// Get godoc
// @Summary      Consultar registro de inventario por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	rec, err := h.uc.GetRecord(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewInventoryRecordResponse(rec))
}

// Close godoc
// @Summary      Cerrar registro de inventario (tombstone; exige existencias en cero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) Close(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.CloseRecord(c.Context(), companyID, actorID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
