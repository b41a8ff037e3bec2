package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementação de StoreRepository (usável com pool ou tx).
type StoreRepo struct {
	q Querier
}

// NewStoreRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

const storeColumns = `id, company_id, user_id, name, marketplace, status, nickname,
	external_account_id, access_token, refresh_token, last_sync_at, created_at, updated_at`

// Create persiste a loja (status pending, sem identidade externa ainda).
func (r *StoreRepo) Create(ctx context.Context, store *entity.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stores (id, company_id, user_id, name, marketplace, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		store.ID, nullIfEmpty(store.CompanyID), nullIfEmpty(store.UserID),
		store.Name, store.Marketplace, store.Status, store.CreatedAt, store.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// GetByID obtém uma loja por ID. Devolve (nil, nil) se não existe.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	s, err := scanStore(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return s, nil
}

// ListByCompany lista as lojas da empresa.
func (r *StoreRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE company_id = $1 ORDER BY created_at`
	return r.list(ctx, query, companyID)
}

// ListActive lista todas as lojas ativas (worker de sync, cross-tenant).
func (r *StoreRepo) ListActive(ctx context.Context) ([]*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE status = 'active' ORDER BY last_sync_at NULLS FIRST`
	return r.list(ctx, query)
}

// Activate grava identidade externa + credenciais e muda para active.
// O índice único parcial (company, marketplace, conta externa) rejeita a
// mesma conta conectada duas vezes no tenant: vira domain.ErrDuplicate.
func (r *StoreRepo) Activate(ctx context.Context, store *entity.Store) error {
	query := `
		UPDATE stores
		SET nickname = $2, external_account_id = $3, access_token = $4,
		    refresh_token = $5, status = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		store.ID, nullIfEmpty(store.Nickname), nullIfEmpty(store.ExternalAccountID),
		nullIfEmpty(store.AccessToken), nullIfEmpty(store.RefreshToken),
		store.Status, store.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("conta de marketplace já conectada nesta empresa: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("activate store: %w", err)
	}
	return nil
}

// Disconnect muda para disconnected e apaga o material de credencial. Os
// pedidos históricos ficam intactos.
func (r *StoreRepo) Disconnect(ctx context.Context, id string) error {
	query := `
		UPDATE stores
		SET status = 'disconnected', access_token = NULL, refresh_token = NULL, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("disconnect store: %w", err)
	}
	return nil
}

// Delete remove a loja; os pedidos caem pela FK ON DELETE CASCADE.
func (r *StoreRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

// UpdateLastSync registra o fim de uma sincronização bem-sucedida.
func (r *StoreRepo) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE stores SET last_sync_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("update store last sync: %w", err)
	}
	return nil
}

func (r *StoreRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Store, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanStore(row pgx.Row) (*entity.Store, error) {
	var s entity.Store
	var companyID, userID, nickname, externalAccountID, accessToken, refreshToken *string
	err := row.Scan(
		&s.ID, &companyID, &userID, &s.Name, &s.Marketplace, &s.Status, &nickname,
		&externalAccountID, &accessToken, &refreshToken, &s.LastSyncAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CompanyID = derefStr(companyID)
	s.UserID = derefStr(userID)
	s.Nickname = derefStr(nickname)
	s.ExternalAccountID = derefStr(externalAccountID)
	s.AccessToken = derefStr(accessToken)
	s.RefreshToken = derefStr(refreshToken)
	return &s, nil
}
