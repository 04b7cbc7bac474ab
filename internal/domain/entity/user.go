package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User representa un usuario del sistema (pertenece a exactamente un Tenant).
// Inmutable después de la creación; cambios de rol fuera de alcance.
type User struct {
	ID           string
	TenantID     string
	Email        string // único global
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // ADMIN | USER
	CreatedAt    time.Time
}

// ValidRole informa si el rol es uno de los soportados.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
