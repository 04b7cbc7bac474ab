package dto

import "time"

// CreateTenantRequest body para POST /api/tenants.
type CreateTenantRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan,omitempty"` // FREE por defecto
}

// UpdateTenantPlanRequest body para PATCH /api/tenants/{id}/plan.
type UpdateTenantPlanRequest struct {
	Plan string `json:"plan"`
}

// TenantResponse representación pública de un tenant.
type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantListResponse listado paginado de tenants.
type TenantListResponse struct {
	Items []TenantResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
