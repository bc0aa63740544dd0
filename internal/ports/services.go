package ports

import (
	"context"

	"github.com/jesuschaires594-droid/proyecto/internal/domain/entities"
)

// UserService defines the operations exposed to the menu and the CLI
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (entities.User, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	UpdateUser(ctx context.Context, id int, req UpdateUserRequest) (entities.User, error)
	DeleteUser(ctx context.Context, id int) error
}

// User related types
type CreateUserRequest struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest carries optional replacements; nil or "" means unchanged.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
