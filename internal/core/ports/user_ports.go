package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type SessionService interface {
	// Login returns a signed access token for the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Verify(tokenString string) (uuid.UUID, domain.Role, error)
}
