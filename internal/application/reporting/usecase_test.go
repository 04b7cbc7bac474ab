package reporting_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jvalencia-dev/almacen-api/internal/application/policy"
	"github.com/jvalencia-dev/almacen-api/internal/application/reporting"
	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

// fakeReportingRepo devuelve agregados fijos.
type fakeReportingRepo struct {
	count  int
	totals repository.MovementTotals
	rows   []repository.StockRow
}

func (f *fakeReportingRepo) CountActiveMaterials(context.Context, string) (int, error) {
	return f.count, nil
}

func (f *fakeReportingRepo) GetMovementTotals(context.Context, string) (repository.MovementTotals, error) {
	return f.totals, nil
}

func (f *fakeReportingRepo) ListStock(context.Context, string) ([]repository.StockRow, error) {
	return f.rows, nil
}

func proAdmin() entity.RequestContext {
	return entity.RequestContext{TenantID: "t1", UserID: "u1", Role: entity.RoleAdmin, Plan: entity.PlanPro}
}

func buildReporting() *reporting.UseCase {
	repo := &fakeReportingRepo{
		count: 3,
		totals: repository.MovementTotals{
			TotalIn:  decimal.RequireFromString("150"),
			TotalOut: decimal.RequireFromString("40"),
		},
		rows: []repository.StockRow{
			{MaterialID: "m1", Name: "Arena", Unit: "kg", CurrentStock: decimal.RequireFromString("60")},
			{MaterialID: "m2", Name: "Cemento", Unit: "kg", CurrentStock: decimal.RequireFromString("50")},
		},
	}
	return reporting.New(repo, policy.New())
}

// ──────────────────────────────────────────────────────────────────────────────
// Summary
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_CalculaNetStock(t *testing.T) {
	uc := buildReporting()

	out, err := uc.Summary(context.Background(), proAdmin())
	require.NoError(t, err)

	assert.Equal(t, 3, out.ActiveMaterials)
	assert.True(t, out.TotalIn.Equal(decimal.RequireFromString("150")))
	assert.True(t, out.TotalOut.Equal(decimal.RequireFromString("40")))
	assert.True(t, out.NetStock.Equal(decimal.RequireFromString("110")),
		"net = total IN - total OUT")
}

func TestSummary_TenantFree_PlanRestricted(t *testing.T) {
	uc := buildReporting()
	rc := proAdmin()
	rc.Plan = entity.PlanFree

	_, err := uc.Summary(context.Background(), rc)
	assert.ErrorIs(t, err, domain.ErrPlanRestricted,
		"los reportes son solo para tenants PRO")
}

// ──────────────────────────────────────────────────────────────────────────────
// ExportXLSX
// ──────────────────────────────────────────────────────────────────────────────

func TestExportXLSX_GeneraLasDosHojas(t *testing.T) {
	uc := buildReporting()

	data, err := uc.ExportXLSX(context.Background(), proAdmin())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err, "el archivo generado debe ser un xlsx válido")
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Resumen", "Materiales"}, f.GetSheetList())

	// Hoja Resumen: agregados
	label, err := f.GetCellValue("Resumen", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Materiales activos", label)
	count, err := f.GetCellValue("Resumen", "B1")
	require.NoError(t, err)
	assert.Equal(t, "3", count)
	net, err := f.GetCellValue("Resumen", "B4")
	require.NoError(t, err)
	assert.Equal(t, "110", net)

	// Hoja Materiales: header + una fila por material
	name, err := f.GetCellValue("Materiales", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Arena", name)
	stock, err := f.GetCellValue("Materiales", "C3")
	require.NoError(t, err)
	assert.Equal(t, "50", stock)
}

func TestExportXLSX_TenantFree_PlanRestricted(t *testing.T) {
	uc := buildReporting()
	rc := proAdmin()
	rc.Plan = entity.PlanFree

	_, err := uc.ExportXLSX(context.Background(), rc)
	assert.ErrorIs(t, err, domain.ErrPlanRestricted)
}
