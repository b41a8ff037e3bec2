// Package marketplace contém os adaptadores HTTP para as APIs dos
// marketplaces suportados. Cada adaptador devolve pedidos já normalizados
// (dto.OrderPayload); o ledger nunca fala com API externa diretamente.
package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/application/order"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

var _ order.MarketplaceClient = (*Router)(nil)

// Router despacha FetchOrders para o adaptador do marketplace da loja.
type Router struct {
	clients map[string]order.MarketplaceClient
}

// NewRouter registra os adaptadores padrão. Marketplaces cadastráveis mas
// ainda sem integração de sync (Amazon, Magalu) ficam de fora e retornam
// erro explícito no FetchOrders.
func NewRouter() *Router {
	return &Router{
		clients: map[string]order.MarketplaceClient{
			entity.MarketplaceMercadoLivre: NewMercadoLivreClient(""),
			entity.MarketplaceShopee:       NewShopeeClient(""),
		},
	}
}

// Register substitui ou adiciona o adaptador de um marketplace (testes e
// ambientes sandbox).
func (r *Router) Register(marketplace string, client order.MarketplaceClient) {
	r.clients[marketplace] = client
}

func (r *Router) FetchOrders(ctx context.Context, store *entity.Store, since time.Time) ([]dto.OrderPayload, error) {
	client, ok := r.clients[store.Marketplace]
	if !ok {
		return nil, fmt.Errorf("marketplace %q sem integração de sincronização", store.Marketplace)
	}
	return client.FetchOrders(ctx, store, since)
}
