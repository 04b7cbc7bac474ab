package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jvalencia-dev/almacen-api/internal/application/ledger"
	"github.com/jvalencia-dev/almacen-api/internal/application/usecase"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos de ledger y materiales.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Es el punto único de commit del sistema: el update de stock y el insert de
// la transacción del ledger solo se vuelven visibles juntos.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materials repository.MaterialRepository,
	transactions repository.TransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	materials := NewMaterialRepository(tx)
	transactions := NewTransactionRepository(tx)

	if err := fn(materials, transactions); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
