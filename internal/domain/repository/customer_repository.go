package repository

import (
	"context"

	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// CustomerRepository porta do índice derivado de clientes por loja.
type CustomerRepository interface {
	// UpsertFromOrder atualiza a entrada (store_id, customer_email) do índice
	// recalculando os agregados a partir da tabela de pedidos. Pedidos sem
	// email de cliente são ignorados.
	UpsertFromOrder(ctx context.Context, order *entity.Order) error
	ListByCompany(ctx context.Context, companyID, storeID string, limit, offset int) ([]*entity.StoreCustomer, error)
}
