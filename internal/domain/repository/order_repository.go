package repository

import (
	"context"
	"time"

	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// OrderFilter critérios de listagem de pedidos. CompanyID é obrigatório: toda
// leitura é escopada ao tenant do chamador.
type OrderFilter struct {
	CompanyID string
	StoreID   string
	// Status filtra pelo bucket canônico (status_normalized), não pelo valor
	// bruto do marketplace.
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// OrderRepository porta de persistência para pedidos de marketplace.
type OrderRepository interface {
	// Upsert insere o pedido ou, se (store_id, external_id) já existe, atualiza
	// os campos mutáveis preservando id e created_at. A operação é um único
	// statement atômico — duas sincronizações concorrentes do mesmo pedido
	// nunca produzem duas linhas. Devolve a linha resultante.
	Upsert(ctx context.Context, order *entity.Order) (*entity.Order, error)

	// GetByIDForCompany devolve o pedido apenas se a loja dele pertence à
	// empresa; caso contrário (nil, nil), indistinguível de inexistente.
	GetByIDForCompany(ctx context.Context, id, companyID string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	CountByFilter(ctx context.Context, filter OrderFilter) (int, error)
}
