package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Append-only: no hay UPDATE ni DELETE sobre transactions.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste una transacción del ledger.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (id, tenant_id, material_id, type, quantity, pre_transaction_stock, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	createdBy := (*string)(nil)
	if t.CreatedBy != "" {
		createdBy = &t.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.MaterialID, t.Type, t.Quantity,
		t.PreTransactionStock, t.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListRecentByMaterial devuelve las últimas transacciones del material
// (created_at DESC). No mira deleted_at del material: el historial de un
// material borrado sigue siendo reconstruible.
func (r *TransactionRepo) ListRecentByMaterial(ctx context.Context, tenantID, materialID string, limit int) ([]*entity.Transaction, error) {
	query := `
		SELECT id, tenant_id, material_id, type, quantity, pre_transaction_stock, created_at, created_by
		FROM transactions
		WHERE tenant_id = $1 AND material_id = $2
		ORDER BY created_at DESC LIMIT $3`
	rows, err := r.q.Query(ctx, query, tenantID, materialID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		var t entity.Transaction
		var createdBy *string
		if err := rows.Scan(&t.ID, &t.TenantID, &t.MaterialID, &t.Type, &t.Quantity,
			&t.PreTransactionStock, &t.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if createdBy != nil {
			t.CreatedBy = *createdBy
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
