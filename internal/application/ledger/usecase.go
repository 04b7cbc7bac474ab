package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jvalencia-dev/almacen-api/internal/application/policy"
	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// movementsTotal movimientos confirmados, etiquetados por tipo (IN/OUT).
var movementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "almacen_movements_total",
	Help: "Movimientos de stock confirmados, por tipo.",
}, []string{"type"})

// UseCase es el motor del ledger: aplica un movimiento de stock y registra la
// transacción como una sola unidad atómica. La fila del material se bloquea
// (SELECT FOR UPDATE) durante toda la sección crítica, de modo que los
// movimientos sobre un mismo material quedan totalmente ordenados y los de
// materiales distintos corren en paralelo.
type UseCase struct {
	txRunner TxRunner
	gate     *policy.Gate
}

// New construye el motor del ledger.
func New(txRunner TxRunner, gate *policy.Gate) *UseCase {
	return &UseCase{txRunner: txRunner, gate: gate}
}

// MovementInput entrada para aplicar un movimiento IN/OUT sobre un material.
type MovementInput struct {
	MaterialID string
	Type       string // IN | OUT
	Quantity   decimal.Decimal
}

// MovementResult material actualizado + transacción creada.
type MovementResult struct {
	Material    *entity.Material
	Transaction *entity.Transaction
}

// ApplyMovement valida, abre una transacción, bloquea la fila del material y
// aplica el movimiento:
//
//  1. Lee el stock actual (pre) con la fila bloqueada.
//  2. OUT con pre < cantidad => InsufficientStockError, sin mutar nada.
//  3. post = pre + cantidad (IN) o pre - cantidad (OUT).
//  4. Update de current_stock + insert de la transacción; Commit o Rollback juntos.
//
// Material inexistente, de otro tenant o borrado lógicamente fallan igual con
// ErrNotFound: la búsqueda lleva el predicado completo para no filtrar
// existencia entre tenants.
func (uc *UseCase) ApplyMovement(ctx context.Context, rc entity.RequestContext, input MovementInput) (*MovementResult, error) {
	if err := uc.gate.Authorize(policy.ActionRegisterMovement, rc); err != nil {
		return nil, err
	}
	if input.MaterialID == "" || !entity.ValidMovementType(input.Type) {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result *MovementResult

	err := uc.txRunner.Run(ctx, func(
		materials repository.MaterialRepository,
		transactions repository.TransactionRepository,
	) error {
		// Bloquea la fila del material (SELECT FOR UPDATE): sección crítica
		material, err := materials.GetActiveForUpdate(ctx, rc.TenantID, input.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}

		pre := material.CurrentStock
		var post decimal.Decimal
		switch input.Type {
		case entity.MovementTypeIN:
			post = pre.Add(input.Quantity)
		case entity.MovementTypeOUT:
			if pre.LessThan(input.Quantity) {
				return &domain.InsufficientStockError{
					Available: pre,
					Requested: input.Quantity,
					Unit:      material.Unit,
				}
			}
			post = pre.Sub(input.Quantity)
		}

		if err := materials.UpdateStock(ctx, material.ID, post, now); err != nil {
			return err
		}
		tx := &entity.Transaction{
			ID:                  uuid.New().String(),
			TenantID:            rc.TenantID,
			MaterialID:          material.ID,
			Type:                input.Type,
			Quantity:            input.Quantity,
			PreTransactionStock: pre,
			CreatedAt:           now,
			CreatedBy:           rc.UserID,
		}
		if err := transactions.Create(ctx, tx); err != nil {
			return err
		}

		material.CurrentStock = post
		material.UpdatedAt = now
		result = &MovementResult{Material: material, Transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}

	movementsTotal.WithLabelValues(input.Type).Inc()
	return result, nil
}
