package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// MovementTotals suma de cantidades agrupada por tipo de movimiento.
type MovementTotals struct {
	TotalIn  decimal.Decimal
	TotalOut decimal.Decimal
}

// StockRow fila del reporte de stock por material.
type StockRow struct {
	MaterialID   string
	Name         string
	Unit         string
	CurrentStock decimal.Decimal
}

// ReportingRepository define las consultas de lectura para el reporting view.
// Las implementaciones son read-only y solo ven estado confirmado (committed).
type ReportingRepository interface {
	// CountActiveMaterials cuenta los materiales no borrados del tenant.
	CountActiveMaterials(ctx context.Context, tenantID string) (int, error)
	// GetMovementTotals suma las cantidades de transacciones agrupadas por tipo.
	GetMovementTotals(ctx context.Context, tenantID string) (MovementTotals, error)
	// ListStock devuelve nombre, unidad y stock actual de los materiales activos,
	// ordenados por nombre, para el export del reporte.
	ListStock(ctx context.Context, tenantID string) ([]StockRow, error)
}
