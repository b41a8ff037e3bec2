package repository

import (
	"context"

	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// UserRepository porta de persistência para usuários.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// BindCompany define a empresa corrente do usuário (criação de empresa ou
	// aceitação de convite).
	BindCompany(ctx context.Context, userID, companyID string) error
}
