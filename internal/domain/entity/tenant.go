package entity

import "time"

// Planes válidos para Tenant.
const (
	PlanFree = "FREE"
	PlanPro  = "PRO"
)

// Límite de materiales activos (no borrados) para el plan FREE.
const FreePlanMaterialLimit = 5

// Tenant representa una cuenta aislada; unidad de partición de datos.
// El nombre es único global. El plan es mutable; los tenants nunca se eliminan.
type Tenant struct {
	ID        string
	Name      string
	Plan      string // FREE | PRO
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidPlan informa si el plan es uno de los soportados.
func ValidPlan(plan string) bool {
	return plan == PlanFree || plan == PlanPro
}
