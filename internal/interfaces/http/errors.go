package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/avicola-api/internal/application/dto"
	"github.com/jhoicas/avicola-api/internal/domain"
)

// respondError mapea errores de dominio a códigos HTTP. Validación -> 400,
// no encontrado -> 404 (también referencias de otra empresa: nunca se revela
// existencia con un 403), rechazos de negocio -> 409, conflicto de concurrencia
// agotados los reintentos -> 409 con código propio, resto -> 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInvalidMovementRequest):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_MOVEMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrAmbiguousOrigin):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "AMBIGUOUS_ORIGIN", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicateActiveRecord):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_RECORD", Message: err.Error()})
	case errors.Is(err, domain.ErrNonZeroStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NON_ZERO_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrDestinationNotFound):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DESTINATION_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNegativeStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NEGATIVE_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT_RETRY", Message: "conflicto de concurrencia, intente de nuevo"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
