package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jvalencia-dev/almacen-api/internal/application/dto"
	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/rs/zerolog/log"
)

// writeDomainError mapea los errores de dominio a respuestas HTTP con un
// código estable. Ningún error se silencia; lo no clasificado es INTERNAL.
func writeDomainError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insufficient.Error(),
			Details: fiber.Map{
				"available": insufficient.Available,
				"requested": insufficient.Requested,
				"unit":      insufficient.Unit,
			},
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol insuficiente para la operación"})
	case errors.Is(err, domain.ErrPlanRestricted):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "PLAN_RESTRICTED", Message: "funcionalidad disponible solo en plan PRO"})
	case errors.Is(err, domain.ErrPlanLimitReached):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "PLAN_LIMIT", Message: "límite de materiales del plan FREE alcanzado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	default:
		// El detalle (SQL, driver, DSN) se queda en el log; al cliente solo
		// le llega un mensaje genérico
		log.Error().Err(err).Str("path", c.Path()).Msg("error no clasificado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
