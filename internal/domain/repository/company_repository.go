package repository

import (
	"context"

	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// CompanyRepository porta de persistência para empresas.
// Métodos Get* devolvem (nil, nil) quando não há linha.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
}
