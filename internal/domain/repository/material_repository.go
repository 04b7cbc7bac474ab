package repository

import (
	"context"
	"time"

	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MaterialFilters filtros opcionales para listar materiales.
type MaterialFilters struct {
	Name string // substring, case-insensitive
	Unit string // match exacto, case-insensitive
}

// MaterialRepository define el puerto de persistencia para Material.
// Todas las consultas están acotadas por tenant y excluyen borrados lógicos:
// "no existe", "es de otro tenant" y "está borrado" son indistinguibles
// para el caller (mismo nil / cero filas).
type MaterialRepository interface {
	// LockTenant bloquea la fila del tenant (SELECT FOR UPDATE) para serializar
	// las altas de material del tenant. Usar solo dentro de una transacción:
	// el conteo del cupo FREE solo es estable con este lock tomado antes.
	LockTenant(ctx context.Context, tenantID string) error
	Create(ctx context.Context, material *entity.Material) error
	// GetActive obtiene un material activo (no borrado) del tenant.
	GetActive(ctx context.Context, tenantID, id string) (*entity.Material, error)
	// GetActiveForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	// Usar solo dentro de una transacción; es la sección crítica del ledger.
	GetActiveForUpdate(ctx context.Context, tenantID, id string) (*entity.Material, error)
	// UpdateStock fija el stock cacheado del material. Solo lo llama el ledger
	// dentro de la misma transacción que inserta la Transaction.
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal, at time.Time) error
	// SoftDelete marca deleted_at y devuelve el material marcado.
	// Cero filas afectadas (inexistente, ajeno o ya borrado) => nil, nil.
	SoftDelete(ctx context.Context, tenantID, id string, at time.Time) (*entity.Material, error)
	ListByTenant(ctx context.Context, tenantID string, filters MaterialFilters, limit, offset int) ([]*entity.Material, error)
	// CountActiveByTenant cuenta materiales no borrados; alimenta el cupo del plan FREE.
	CountActiveByTenant(ctx context.Context, tenantID string) (int, error)
}
