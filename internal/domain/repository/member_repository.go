package repository

import (
	"context"
	"time"

	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// MemberRepository porta de persistência para membros de empresa e seus
// convites. Métodos Get* devolvem (nil, nil) quando não há linha.
type MemberRepository interface {
	Create(ctx context.Context, member *entity.CompanyMember) error
	GetByID(ctx context.Context, id string) (*entity.CompanyMember, error)
	GetByUserAndCompany(ctx context.Context, userID, companyID string) (*entity.CompanyMember, error)
	// GetActiveByEmail localiza um membro ativo ou convite pendente pelo email
	// denormalizado dentro da empresa (bloqueia convites duplicados).
	GetActiveByEmail(ctx context.Context, companyID, email string) (*entity.CompanyMember, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyMember, error)

	// ConsumeInviteToken aceita o convite de forma atômica: um único UPDATE
	// condicional vincula userID, marca acceptedAt e limpa o token. Devolve
	// (nil, nil) se o token é desconhecido ou já foi consumido — os dois casos
	// são indistinguíveis de propósito.
	ConsumeInviteToken(ctx context.Context, token, userID string, at time.Time) (*entity.CompanyMember, error)

	// SetActive ativa/desativa um membro já aceito.
	SetActive(ctx context.Context, memberID string, active bool) error
}
