package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autenticado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrPlanRestricted    = errors.New("funcionalidad no disponible en el plan actual")
	ErrPlanLimitReached  = errors.New("límite del plan alcanzado")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// InsufficientStockError detalla un rechazo por stock insuficiente en una salida (OUT).
// Available es el stock al momento del intento; la operación no mutó nada.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %s %s, solicitado %s",
		e.Available.String(), e.Unit, e.Requested.String())
}

// Is permite errors.Is(err, domain.ErrInsufficientStock) sobre el error tipado.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
