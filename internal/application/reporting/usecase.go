package reporting

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jvalencia-dev/almacen-api/internal/application/dto"
	"github.com/jvalencia-dev/almacen-api/internal/application/policy"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
	"github.com/xuri/excelize/v2"
)

// UseCase reporting view de solo lectura sobre el ledger confirmado.
// Todo el acceso está restringido al plan PRO; el gate se evalúa en cada
// llamada contra el plan resuelto en la petición actual.
type UseCase struct {
	repo repository.ReportingRepository
	gate *policy.Gate
}

// New construye el caso de uso de reporting.
func New(repo repository.ReportingRepository, gate *policy.Gate) *UseCase {
	return &UseCase{repo: repo, gate: gate}
}

// Summary devuelve el agregado del inventario del tenant: materiales activos
// y suma de cantidades por tipo de movimiento, sobre estado confirmado.
func (uc *UseCase) Summary(ctx context.Context, rc entity.RequestContext) (*dto.InventorySummaryDTO, error) {
	if err := uc.gate.Authorize(policy.ActionViewReports, rc); err != nil {
		return nil, err
	}
	count, err := uc.repo.CountActiveMaterials(ctx, rc.TenantID)
	if err != nil {
		return nil, err
	}
	totals, err := uc.repo.GetMovementTotals(ctx, rc.TenantID)
	if err != nil {
		return nil, err
	}
	return &dto.InventorySummaryDTO{
		ActiveMaterials: count,
		TotalIn:         totals.TotalIn,
		TotalOut:        totals.TotalOut,
		NetStock:        totals.TotalIn.Sub(totals.TotalOut),
	}, nil
}

// ExportXLSX genera el reporte en Excel: hoja "Resumen" con los agregados y
// hoja "Materiales" con el stock actual por material.
func (uc *UseCase) ExportXLSX(ctx context.Context, rc entity.RequestContext) ([]byte, error) {
	summary, err := uc.Summary(ctx, rc)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repo.ListStock(ctx, rc.TenantID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summarySheet = "Resumen"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}
	_ = f.SetCellValue(summarySheet, "A1", "Materiales activos")
	_ = f.SetCellValue(summarySheet, "B1", summary.ActiveMaterials)
	_ = f.SetCellValue(summarySheet, "A2", "Total entradas")
	_ = f.SetCellValue(summarySheet, "B2", summary.TotalIn.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A3", "Total salidas")
	_ = f.SetCellValue(summarySheet, "B3", summary.TotalOut.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A4", "Stock neto")
	_ = f.SetCellValue(summarySheet, "B4", summary.NetStock.InexactFloat64())

	const stockSheet = "Materiales"
	if _, err := f.NewSheet(stockSheet); err != nil {
		return nil, fmt.Errorf("crear hoja: %w", err)
	}
	headers := []string{"Material", "Unidad", "Stock actual"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(stockSheet, cell, h)
	}
	for i, row := range rows {
		_ = f.SetCellValue(stockSheet, fmt.Sprintf("A%d", i+2), row.Name)
		_ = f.SetCellValue(stockSheet, fmt.Sprintf("B%d", i+2), row.Unit)
		_ = f.SetCellValue(stockSheet, fmt.Sprintf("C%d", i+2), row.CurrentStock.InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("escribir xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
