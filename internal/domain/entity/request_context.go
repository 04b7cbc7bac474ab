package entity

// RequestContext es la identidad resuelta de una petición: se construye en el
// middleware de auth y se pasa explícitamente a cada caso de uso, nunca se lee
// de estado global. Plan se resuelve contra la DB en cada request (puede
// cambiar entre peticiones).
type RequestContext struct {
	TenantID string
	UserID   string
	Role     string // ADMIN | USER
	Plan     string // FREE | PRO
}

// IsAdmin informa si la petición viene de un usuario ADMIN.
func (rc RequestContext) IsAdmin() bool {
	return rc.Role == RoleAdmin
}
