package usecase

import (
	"context"

	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD.
// El caso de uso de materiales lo usa para que el conteo del cupo FREE y el
// insert del material ocurran en la misma transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materials repository.MaterialRepository,
		transactions repository.TransactionRepository,
	) error) error
}
