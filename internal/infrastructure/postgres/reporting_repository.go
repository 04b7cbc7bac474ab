package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

var _ repository.ReportingRepository = (*ReportingRepo)(nil)

// ReportingRepo consultas de solo lectura para el reporting view.
// Solo ve estado confirmado: nunca participa en transacciones del ledger.
type ReportingRepo struct {
	pool *pgxpool.Pool
}

// NewReportingRepository construye el adaptador de reporting.
func NewReportingRepository(pool *pgxpool.Pool) *ReportingRepo {
	return &ReportingRepo{pool: pool}
}

// CountActiveMaterials cuenta los materiales no borrados del tenant.
func (r *ReportingRepo) CountActiveMaterials(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM materials WHERE tenant_id = $1 AND deleted_at IS NULL`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("reporting.CountActiveMaterials: %w", err)
	}
	return count, nil
}

// GetMovementTotals suma las cantidades del ledger agrupadas por tipo.
// Incluye transacciones de materiales borrados: el historial nunca se pierde.
// COALESCE devuelve cero si el tenant no tiene movimientos.
func (r *ReportingRepo) GetMovementTotals(ctx context.Context, tenantID string) (repository.MovementTotals, error) {
	const query = `
	SELECT
	    COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'),  0) AS total_in,
	    COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0) AS total_out
	FROM transactions
	WHERE tenant_id = $1`

	var totals repository.MovementTotals
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(&totals.TotalIn, &totals.TotalOut)
	if err != nil {
		return repository.MovementTotals{}, fmt.Errorf("reporting.GetMovementTotals: %w", err)
	}
	return totals, nil
}

// ListStock devuelve nombre, unidad y stock actual de los materiales activos.
func (r *ReportingRepo) ListStock(ctx context.Context, tenantID string) ([]repository.StockRow, error) {
	const query = `
	SELECT id, name, unit, current_stock
	FROM materials
	WHERE tenant_id = $1 AND deleted_at IS NULL
	ORDER BY name`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("reporting.ListStock: %w", err)
	}
	defer rows.Close()
	var list []repository.StockRow
	for rows.Next() {
		var row repository.StockRow
		if err := rows.Scan(&row.MaterialID, &row.Name, &row.Unit, &row.CurrentStock); err != nil {
			return nil, fmt.Errorf("reporting.ListStock scan: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
