package repository

import (
	"context"

	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para el ledger.
// El ledger es append-only: solo Create y lecturas, nunca update ni delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	// ListRecentByMaterial devuelve las últimas transacciones del material
	// (created_at DESC). No filtra por deleted_at del material: el historial
	// de un material borrado sigue siendo reconstruible por aquí.
	ListRecentByMaterial(ctx context.Context, tenantID, materialID string, limit int) ([]*entity.Transaction, error)
}
