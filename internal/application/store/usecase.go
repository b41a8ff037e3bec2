// Package store contém os casos de uso do registro de lojas: conexões de
// marketplace pertencentes a uma empresa.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// authorizer contrato mínimo de autorização por role; implementado por
// *tenant.TenantUseCase (interface local evita acoplamento entre pacotes).
type authorizer interface {
	Authorize(ctx context.Context, userID, companyID, requiredRole string) error
}

// StoreUseCase casos de uso de lojas.
type StoreUseCase struct {
	storeRepo repository.StoreRepository
	authz     authorizer
}

// NewStoreUseCase constrói o caso de uso.
func NewStoreUseCase(storeRepo repository.StoreRepository, authz authorizer) *StoreUseCase {
	return &StoreUseCase{storeRepo: storeRepo, authz: authz}
}

// Connect cria a loja em status pending (manager+). O handshake OAuth corre
// fora daqui; Activate é chamado pelo callback quando a identidade externa é
// confirmada. A unicidade (empresa, marketplace, conta externa) é verificada
// na ativação, quando a conta externa passa a ser conhecida.
func (uc *StoreUseCase) Connect(ctx context.Context, userID, companyID string, in dto.ConnectStoreRequest) (*dto.StoreResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleManager); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nome da loja é obrigatório: %w", domain.ErrInvalidInput)
	}
	if !entity.ValidMarketplace(in.Marketplace) {
		return nil, fmt.Errorf("marketplace desconhecido %q: %w", in.Marketplace, domain.ErrInvalidInput)
	}
	now := time.Now()
	store := &entity.Store{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Marketplace: in.Marketplace,
		Status:      entity.StoreStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// Activate preenche identidade externa e credenciais após o handshake OAuth.
// Devolve ErrDuplicate se a mesma conta externa já estiver conectada em outra
// loja da empresa (a violação é rejeitada, nunca mesclada silenciosamente).
func (uc *StoreUseCase) Activate(ctx context.Context, userID, companyID, storeID string, in dto.ActivateStoreRequest) (*dto.StoreResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleManager); err != nil {
		return nil, err
	}
	if in.ExternalAccountID == "" || in.AccessToken == "" {
		return nil, fmt.Errorf("conta externa e access token são obrigatórios: %w", domain.ErrInvalidInput)
	}
	store, err := uc.getScoped(ctx, storeID, companyID)
	if err != nil {
		return nil, err
	}
	store.Nickname = in.Nickname
	store.ExternalAccountID = in.ExternalAccountID
	store.AccessToken = in.AccessToken
	store.RefreshToken = in.RefreshToken
	store.Status = entity.StoreStatusActive
	store.UpdatedAt = time.Now()
	if err := uc.storeRepo.Activate(ctx, store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// Disconnect muda a loja para disconnected e apaga o material de credencial.
// Pedidos históricos nunca são apagados por este caminho.
func (uc *StoreUseCase) Disconnect(ctx context.Context, userID, companyID, storeID string) error {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleManager); err != nil {
		return err
	}
	if _, err := uc.getScoped(ctx, storeID, companyID); err != nil {
		return err
	}
	return uc.storeRepo.Disconnect(ctx, storeID)
}

// Remove apaga a loja e, por cascata, todos os seus pedidos (caminho explícito
// de "full remove"; owner/admin).
func (uc *StoreUseCase) Remove(ctx context.Context, userID, companyID, storeID string) error {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleAdmin); err != nil {
		return err
	}
	if _, err := uc.getScoped(ctx, storeID, companyID); err != nil {
		return err
	}
	return uc.storeRepo.Delete(ctx, storeID)
}

// List lista as lojas da empresa do chamador.
func (uc *StoreUseCase) List(ctx context.Context, userID, companyID string) (*dto.StoreListResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	stores, err := uc.storeRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreResponse, 0, len(stores))
	for _, s := range stores {
		items = append(items, *toStoreResponse(s))
	}
	return &dto.StoreListResponse{Items: items}, nil
}

// Get devolve uma loja da empresa do chamador.
func (uc *StoreUseCase) Get(ctx context.Context, userID, companyID, storeID string) (*dto.StoreResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	store, err := uc.getScoped(ctx, storeID, companyID)
	if err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// getScoped carrega a loja e verifica o tenant; fora do tenant é ErrNotFound
// (mesma resposta de inexistente, para não vazar existência).
func (uc *StoreUseCase) getScoped(ctx context.Context, storeID, companyID string) (*entity.Store, error) {
	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil || store.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return store, nil
}

func toStoreResponse(s *entity.Store) *dto.StoreResponse {
	if s == nil {
		return nil
	}
	return &dto.StoreResponse{
		ID:                s.ID,
		CompanyID:         s.CompanyID,
		Name:              s.Name,
		Marketplace:       s.Marketplace,
		Status:            s.Status,
		Nickname:          s.Nickname,
		ExternalAccountID: s.ExternalAccountID,
		LastSyncAt:        s.LastSyncAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
