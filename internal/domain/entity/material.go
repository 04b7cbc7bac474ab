package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un material con su stock actual cacheado.
// CurrentStock es un valor derivado: siempre debe igualar la suma con signo
// de las transacciones del material (+quantity IN, -quantity OUT).
// DeletedAt marca borrado lógico: el material queda excluido de listados,
// búsquedas y mutaciones, pero su historial de transacciones se conserva.
type Material struct {
	ID           string
	TenantID     string
	Name         string // único por (tenant, nombre)
	Unit         string // kg, l, unidad, etc.
	CurrentStock decimal.Decimal
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Deleted informa si el material está borrado lógicamente.
func (m *Material) Deleted() bool {
	return m.DeletedAt != nil
}
