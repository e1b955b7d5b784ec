package ports

import (
	"context"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
