package ledger

import (
	"context"

	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del ledger: el update
// de stock y el insert de la transacción confirman juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materials repository.MaterialRepository,
		transactions repository.TransactionRepository,
	) error) error
}
