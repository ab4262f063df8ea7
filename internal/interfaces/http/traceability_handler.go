package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/avicola-api/internal/application/dto"
	"github.com/jhoicas/avicola-api/internal/application/traceability"
)

// TraceabilityHandler expone la trazabilidad de lotes (protegido, solo lectura).
type TraceabilityHandler struct {
	uc *traceability.UseCase
}

// NewTraceabilityHandler construye el handler.
func NewTraceabilityHandler(uc *traceability.UseCase) *TraceabilityHandler {
	return &TraceabilityHandler{uc: uc}
}

// Timeline godoc
// @Summary      Línea de tiempo completa del lote (historial, más antiguo primero)
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.HistoryEntryResponse
// @Router       /api/lotes/{loteId}/timeline [get]
func (h *TraceabilityHandler) Timeline(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	entries, err := h.uc.GetTimeline(c.Context(), companyID, c.Params("loteId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewHistoryEntryResponse(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "timeline": out})
}

// Locations godoc
// @Summary      Ubicaciones activas del lote con el total agregado de aves
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LoteSnapshotResponse
// @Router       /api/lotes/{loteId}/locations [get]
func (h *TraceabilityHandler) Locations(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	loteID := c.Params("loteId")
	snap, err := h.uc.GetCurrentLocations(c.Context(), companyID, loteID)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.LoteSnapshotResponse{
		LoteID:    loteID,
		Locations: make([]dto.InventoryRecordResponse, 0, len(snap.Locations)),
		Total:     dto.CountsDTO(snap.Total),
		TotalAves: snap.Total.Total(),
	}
	for _, r := range snap.Locations {
		out.Locations = append(out.Locations, dto.NewInventoryRecordResponse(r))
	}
	return c.JSON(out)
}
