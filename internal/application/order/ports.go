package order

import (
	"context"
	"time"

	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// TxRunner executa o upsert de pedido e a atualização do índice de clientes
// na mesma transação. Implementado por postgres.TxRunner.
type TxRunner interface {
	RunOrderSync(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// MarketplaceClient busca pedidos já normalizados de um marketplace. As
// implementações reais (chamadas HTTP, paginação, rate limit) vivem na
// infraestrutura; o ledger só persiste o que o cliente devolve.
type MarketplaceClient interface {
	FetchOrders(ctx context.Context, store *entity.Store, since time.Time) ([]dto.OrderPayload, error)
}
