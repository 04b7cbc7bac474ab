package policy

import (
	"context"
	"fmt"

	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
)

// Action acciones que el Policy Gate sabe clasificar.
type Action string

const (
	ActionCreateMaterial   Action = "material:create"
	ActionDeleteMaterial   Action = "material:delete"
	ActionRegisterMovement Action = "movement:register"
	ActionViewReports      Action = "reports:view"
)

// adminOnly acciones de escritura restringidas al rol ADMIN.
var adminOnly = map[Action]bool{
	ActionCreateMaterial: true,
	ActionDeleteMaterial: true,
}

// proOnly acciones restringidas al plan PRO. Se evalúa contra el plan
// resuelto en ESTA petición, nunca cacheado: el plan puede cambiar entre requests.
var proOnly = map[Action]bool{
	ActionViewReports: true,
}

// MaterialCounter lo mínimo que necesita el gate para el cupo del plan FREE.
// Lo implementa MaterialRepository; la interfaz local evita acoplar el gate al puerto completo.
type MaterialCounter interface {
	LockTenant(ctx context.Context, tenantID string) error
	CountActiveByTenant(ctx context.Context, tenantID string) (int, error)
}

// Gate evalúa permisos de rol y restricciones de plan antes de cada mutación.
// Es un predicado puro sobre el RequestContext más, para el cupo, una lectura.
type Gate struct{}

// New construye el gate.
func New() *Gate {
	return &Gate{}
}

// Authorize deniega con ErrForbidden si el rol no alcanza para la acción,
// y con ErrPlanRestricted si la acción exige plan PRO y el tenant no lo tiene.
func (g *Gate) Authorize(action Action, rc entity.RequestContext) error {
	if rc.TenantID == "" || rc.UserID == "" {
		return domain.ErrUnauthorized
	}
	if adminOnly[action] && !rc.IsAdmin() {
		return domain.ErrForbidden
	}
	if proOnly[action] && rc.Plan != entity.PlanPro {
		return domain.ErrPlanRestricted
	}
	return nil
}

// CheckMaterialQuota deniega con ErrPlanLimitReached si un tenant FREE ya tiene
// el máximo de materiales activos. Los borrados lógicos no cuentan contra el cupo.
// Debe llamarse dentro de la misma transacción que inserta el material, y
// bloquea la fila del tenant ANTES de contar: sin el lock, bajo READ COMMITTED
// dos creaciones concurrentes podrían leer ambas el mismo conteo viejo y pasar.
func (g *Gate) CheckMaterialQuota(ctx context.Context, rc entity.RequestContext, counter MaterialCounter) error {
	if rc.Plan == entity.PlanPro {
		return nil
	}
	if err := counter.LockTenant(ctx, rc.TenantID); err != nil {
		return err
	}
	count, err := counter.CountActiveByTenant(ctx, rc.TenantID)
	if err != nil {
		return fmt.Errorf("contar materiales del tenant: %w", err)
	}
	if count >= entity.FreePlanMaterialLimit {
		return domain.ErrPlanLimitReached
	}
	return nil
}
