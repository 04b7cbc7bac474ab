package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	MaterialID string          `json:"material_id"`
	Type       string          `json:"type"` // IN | OUT
	Quantity   decimal.Decimal `json:"quantity"`
}

// TransactionResponse representación pública de una transacción del ledger.
type TransactionResponse struct {
	ID                  string          `json:"id"`
	MaterialID          string          `json:"material_id"`
	Type                string          `json:"type"`
	Quantity            decimal.Decimal `json:"quantity"`
	PreTransactionStock decimal.Decimal `json:"pre_transaction_stock"`
	CreatedAt           time.Time       `json:"created_at"`
	CreatedBy           string          `json:"created_by,omitempty"`
}

// MovementResponse resultado de aplicar un movimiento: material actualizado + transacción creada.
type MovementResponse struct {
	Material    MaterialResponse    `json:"material"`
	Transaction TransactionResponse `json:"transaction"`
}
