package ports

import (
	"context"

	"github.com/jesuschaires594-droid/proyecto/internal/domain/entities"
)

// UserRepository defines the interface for user record persistence.
// Implementations return entities.ErrDuplicateID, entities.ErrUserNotFound
// or an error matching entities.ErrStorageUnavailable.
type UserRepository interface {
	Create(ctx context.Context, user entities.User) error
	List(ctx context.Context) ([]entities.User, error)
	Update(ctx context.Context, id int, name, email *string) (entities.User, error)
	Delete(ctx context.Context, id int) error
}
