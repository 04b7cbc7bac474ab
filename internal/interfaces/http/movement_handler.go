package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jvalencia-dev/almacen-api/internal/application/dto"
	"github.com/jvalencia-dev/almacen-api/internal/application/ledger"
)

// MovementHandler maneja las peticiones HTTP de movimientos de stock (protegido).
type MovementHandler struct {
	uc *ledger.UseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar movimiento de stock (IN/OUT)
// @Description  Aplica el movimiento y registra la transacción del ledger como
//               una sola unidad atómica. OUT que dejaría stock negativo se
//               rechaza con INSUFFICIENT_STOCK sin mutar nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "material_id, type (IN|OUT), quantity > 0"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.ApplyMovement(c.Context(), RequestContext(c), ledger.MovementInput{
		MaterialID: in.MaterialID,
		Type:       in.Type,
		Quantity:   in.Quantity,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	out := dto.MovementResponse{
		Material: dto.MaterialResponse{
			ID:           result.Material.ID,
			TenantID:     result.Material.TenantID,
			Name:         result.Material.Name,
			Unit:         result.Material.Unit,
			CurrentStock: result.Material.CurrentStock,
			CreatedAt:    result.Material.CreatedAt,
		},
		Transaction: dto.TransactionResponse{
			ID:                  result.Transaction.ID,
			MaterialID:          result.Transaction.MaterialID,
			Type:                result.Transaction.Type,
			Quantity:            result.Transaction.Quantity,
			PreTransactionStock: result.Transaction.PreTransactionStock,
			CreatedAt:           result.Transaction.CreatedAt,
			CreatedBy:           result.Transaction.CreatedBy,
		},
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
