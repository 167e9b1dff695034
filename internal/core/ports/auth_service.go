package ports

import (
	"context"

	"github.com/notedrop/notes-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)
}
