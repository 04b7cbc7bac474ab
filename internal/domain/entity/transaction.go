package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Transaction es un registro inmutable del ledger: no existe update ni delete.
// PreTransactionStock es el stock en el instante previo a aplicar el movimiento;
// permite reconstruir la auditoría sin depender del CurrentStock mutable.
type Transaction struct {
	ID                  string
	TenantID            string
	MaterialID          string
	Type                string          // IN | OUT
	Quantity            decimal.Decimal // siempre > 0; el signo lo da Type
	PreTransactionStock decimal.Decimal
	CreatedAt           time.Time
	CreatedBy           string // UserID
}

// ValidMovementType informa si el tipo es IN u OUT.
func ValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}

// SignedQuantity devuelve la cantidad con signo según el tipo de movimiento.
func (t *Transaction) SignedQuantity() decimal.Decimal {
	if t.Type == MovementTypeOUT {
		return t.Quantity.Neg()
	}
	return t.Quantity
}
