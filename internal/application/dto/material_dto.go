package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials.
type CreateMaterialRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// ListMaterialsRequest query params para GET /api/materials.
type ListMaterialsRequest struct {
	Name string `query:"name"` // substring, case-insensitive
	Unit string `query:"unit"` // match exacto, case-insensitive
	PageRequest
}

// MaterialResponse representación pública de un material.
type MaterialResponse struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MaterialDetailResponse material + sus últimas transacciones.
type MaterialDetailResponse struct {
	MaterialResponse
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// MaterialListResponse listado paginado de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
