package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
// Toda consulta lleva tenant_id y deleted_at IS NULL en el predicado: material
// inexistente, de otro tenant o borrado devuelven lo mismo.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de materiales. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, tenant_id, name, unit, current_stock, deleted_at, created_at, updated_at`

// LockTenant bloquea la fila del tenant (SELECT FOR UPDATE): dos altas
// concurrentes del mismo tenant se serializan aquí, así el conteo del cupo
// FREE nunca se evalúa contra un count viejo. Usar dentro de una transacción.
func (r *MaterialRepo) LockTenant(ctx context.Context, tenantID string) error {
	var id string
	err := r.q.QueryRow(ctx, `SELECT id FROM tenants WHERE id = $1 FOR UPDATE`, tenantID).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("lock tenant: %w", err)
	}
	return nil
}

// Create persiste un nuevo material. Nombre duplicado en el tenant => ErrDuplicate.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (id, tenant_id, name, unit, current_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.Name, m.Unit, m.CurrentStock, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetActive obtiene un material activo del tenant. Cero filas => nil, nil.
func (r *MaterialRepo) GetActive(ctx context.Context, tenantID, id string) (*entity.Material, error) {
	query := `
		SELECT ` + materialColumns + `
		FROM materials WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantID), "get material")
}

// GetActiveForUpdate obtiene el material y bloquea la fila (SELECT FOR UPDATE).
// Sección crítica del ledger: serializa movimientos por material.
func (r *MaterialRepo) GetActiveForUpdate(ctx context.Context, tenantID, id string) (*entity.Material, error) {
	query := `
		SELECT ` + materialColumns + `
		FROM materials WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantID), "get material for update")
}

// UpdateStock fija el stock cacheado. Solo lo llama el ledger dentro de la
// misma transacción que inserta la Transaction.
func (r *MaterialRepo) UpdateStock(ctx context.Context, id string, stock decimal.Decimal, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE materials SET current_stock = $2, updated_at = $3 WHERE id = $1`,
		id, stock, at,
	)
	if err != nil {
		return fmt.Errorf("update material stock: %w", err)
	}
	return nil
}

// SoftDelete marca deleted_at y devuelve la fila marcada. El predicado
// deleted_at IS NULL hace que un segundo borrado devuelva cero filas (nil, nil).
func (r *MaterialRepo) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) (*entity.Material, error) {
	query := `
		UPDATE materials SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING ` + materialColumns
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantID, at), "soft delete material")
}

// ListByTenant lista materiales activos del tenant con filtros opcionales,
// created_at DESC. Nombre: substring case-insensitive; unidad: exacto case-insensitive.
func (r *MaterialRepo) ListByTenant(ctx context.Context, tenantID string, filters repository.MaterialFilters, limit, offset int) ([]*entity.Material, error) {
	query := `
		SELECT ` + materialColumns + `
		FROM materials WHERE tenant_id = $1 AND deleted_at IS NULL`
	args := []any{tenantID}
	pos := 2
	if filters.Name != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", pos)
		args = append(args, "%"+filters.Name+"%")
		pos++
	}
	if filters.Unit != "" {
		query += fmt.Sprintf(" AND LOWER(unit) = LOWER($%d)", pos)
		args = append(args, filters.Unit)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Name, &m.Unit, &m.CurrentStock,
			&m.DeletedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CountActiveByTenant cuenta materiales no borrados del tenant (cupo plan FREE).
func (r *MaterialRepo) CountActiveByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM materials WHERE tenant_id = $1 AND deleted_at IS NULL`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return count, nil
}

func (r *MaterialRepo) scanOne(row interface{ Scan(dest ...any) error }, op string) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(&m.ID, &m.TenantID, &m.Name, &m.Unit, &m.CurrentStock,
		&m.DeletedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}
