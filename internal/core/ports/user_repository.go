package ports

import (
	"context"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

// UserRepository defines persistence operations for registry users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// RoleResolver answers "what role does this user id hold". The production
// resolver is the user store fronted by a Redis cache; handlers depend on
// this narrow interface rather than the full repository.
type RoleResolver interface {
	RoleByUserID(ctx context.Context, userID string) (domain.Role, error)
}
