package dto

import "github.com/shopspring/decimal"

// InventorySummaryDTO reporte agregado del inventario de un tenant (solo PRO).
type InventorySummaryDTO struct {
	ActiveMaterials int             `json:"active_materials"`
	TotalIn         decimal.Decimal `json:"total_in"`
	TotalOut        decimal.Decimal `json:"total_out"`
	NetStock        decimal.Decimal `json:"net_stock"` // TotalIn - TotalOut
}
