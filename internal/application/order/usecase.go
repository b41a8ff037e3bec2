// Package order contém os casos de uso do ledger de pedidos: ingestão
// idempotente por identificador externo e leitura escopada ao tenant.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/marketplace"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// authorizer contrato mínimo de autorização por role (ver pacote tenant).
type authorizer interface {
	Authorize(ctx context.Context, userID, companyID, requiredRole string) error
}

// OrderUseCase casos de uso do ledger de pedidos.
type OrderUseCase struct {
	tx           TxRunner
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	storeRepo    repository.StoreRepository
	authz        authorizer
}

// NewOrderUseCase constrói o caso de uso.
func NewOrderUseCase(
	tx TxRunner,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	storeRepo repository.StoreRepository,
	authz authorizer,
) *OrderUseCase {
	return &OrderUseCase{
		tx:           tx,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		storeRepo:    storeRepo,
		authz:        authz,
	}
}

// Upsert ingere um pedido buscado do marketplace. Idempotente por
// (storeID, externalID): repetir a chamada com payloads diferentes atualiza a
// mesma linha, preservando id e created_at. O índice derivado de clientes é
// atualizado na mesma transação.
//
// Chamado pelo job de sync, não por usuários; a autorização aqui é a posse da
// loja, já resolvida pelo chamador.
func (uc *OrderUseCase) Upsert(ctx context.Context, storeID string, payload dto.OrderPayload) (*dto.OrderResponse, error) {
	if payload.ExternalID == "" {
		return nil, fmt.Errorf("external_id é obrigatório: %w", domain.ErrInvalidInput)
	}
	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	candidate := &entity.Order{
		ID:                 uuid.New().String(), // descartado se a linha já existe
		StoreID:            storeID,
		ExternalID:         payload.ExternalID,
		ExternalOrderID:    payload.ExternalOrderID,
		ExternalShipmentID: payload.ExternalShipmentID,
		ExternalPackID:     payload.ExternalPackID,
		Marketplace:        store.Marketplace,
		Status:             payload.Status,
		StatusNormalized:   marketplace.NormalizeStatus(payload.Status),
		Total:              payload.Total,
		OrderCreatedAt:     payload.OrderCreatedAt,
		CustomerName:       payload.CustomerName,
		CustomerEmail:      payload.CustomerEmail,
		CustomerPhone:      payload.CustomerPhone,
		CustomerCity:       payload.CustomerCity,
		CustomerState:      payload.CustomerState,
		CustomerAddress:    payload.CustomerAddress,
		CustomerZipCode:    payload.CustomerZipCode,
		RawData:            payload.RawData,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	var persisted *entity.Order
	err = uc.tx.RunOrderSync(ctx, func(orderRepo repository.OrderRepository, customerRepo repository.CustomerRepository) error {
		var txErr error
		persisted, txErr = orderRepo.Upsert(ctx, candidate)
		if txErr != nil {
			return txErr
		}
		return customerRepo.UpsertFromOrder(ctx, persisted)
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(persisted), nil
}

// Get devolve um pedido da empresa do chamador. Pedido de outro tenant tem a
// mesma resposta de um pedido inexistente.
func (uc *OrderUseCase) Get(ctx context.Context, userID, companyID, orderID string) (*dto.OrderResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	o, err := uc.orderRepo.GetByIDForCompany(ctx, orderID, companyID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(o), nil
}

// List lista pedidos sempre escopados à empresa do chamador. O filtro de
// status usa o bucket canônico; um valor fora do conjunto é rejeitado.
func (uc *OrderUseCase) List(ctx context.Context, userID, companyID string, q dto.ListOrdersQuery) (*dto.OrderListResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	q.DefaultPage()

	if q.Status != "" && q.Status != marketplace.StatusOther && marketplace.NormalizeStatus(q.Status) != q.Status {
		return nil, fmt.Errorf("status %q não é um bucket canônico: %w", q.Status, domain.ErrInvalidInput)
	}
	if q.StoreID != "" {
		store, err := uc.storeRepo.GetByID(ctx, q.StoreID)
		if err != nil {
			return nil, err
		}
		if store == nil || store.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}

	filter := repository.OrderFilter{
		CompanyID: companyID,
		StoreID:   q.StoreID,
		Status:    q.Status,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	var err error
	if filter.From, err = parseDate(q.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseDate(q.To); err != nil {
		return nil, err
	}

	orders, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.orderRepo.CountByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// ListCustomers lista o índice derivado de clientes da empresa (ou de uma loja).
func (uc *OrderUseCase) ListCustomers(ctx context.Context, userID, companyID, storeID string, page dto.PageRequest) (*dto.StoreCustomerListResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	page.DefaultPage()
	if storeID != "" {
		store, err := uc.storeRepo.GetByID(ctx, storeID)
		if err != nil {
			return nil, err
		}
		if store == nil || store.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}
	customers, err := uc.customerRepo.ListByCompany(ctx, companyID, storeID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreCustomerResponse, 0, len(customers))
	for _, c := range customers {
		items = append(items, dto.StoreCustomerResponse{
			ID:          c.ID,
			StoreID:     c.StoreID,
			Email:       c.Email,
			Name:        c.Name,
			Phone:       c.Phone,
			City:        c.City,
			State:       c.State,
			OrderCount:  c.OrderCount,
			TotalSpent:  c.TotalSpent,
			LastOrderAt: c.LastOrderAt,
		})
	}
	return &dto.StoreCustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// parseDate aceita RFC 3339 ou YYYY-MM-DD; vazio devolve nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("data %q inválida: %w", s, domain.ErrInvalidInput)
	}
	return &t, nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	return &dto.OrderResponse{
		ID:                 o.ID,
		StoreID:            o.StoreID,
		ExternalID:         o.ExternalID,
		ExternalOrderID:    o.ExternalOrderID,
		ExternalShipmentID: o.ExternalShipmentID,
		ExternalPackID:     o.ExternalPackID,
		Marketplace:        o.Marketplace,
		Status:             o.Status,
		StatusNormalized:   o.StatusNormalized,
		Total:              o.Total,
		OrderCreatedAt:     o.OrderCreatedAt,
		CustomerName:       o.CustomerName,
		CustomerEmail:      o.CustomerEmail,
		CustomerPhone:      o.CustomerPhone,
		CustomerCity:       o.CustomerCity,
		CustomerState:      o.CustomerState,
		CustomerAddress:    o.CustomerAddress,
		CustomerZipCode:    o.CustomerZipCode,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
