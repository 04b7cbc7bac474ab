package repository

import (
	"context"

	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para Tenant (DIP).
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	GetByName(ctx context.Context, name string) (*entity.Tenant, error)
	UpdatePlan(ctx context.Context, id, plan string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error)
}
