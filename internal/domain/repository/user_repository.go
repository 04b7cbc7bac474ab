package repository

import (
	"context"

	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
// Los usuarios son inmutables después de creados; no hay Update ni Delete.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
