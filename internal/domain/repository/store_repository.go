package repository

import (
	"context"
	"time"

	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// StoreRepository porta de persistência para lojas (conexões de marketplace).
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Store, error)
	// ListActive devolve todas as lojas ativas de todos os tenants (worker de sync).
	ListActive(ctx context.Context) ([]*entity.Store, error)

	// Activate preenche identidade externa + credenciais após o handshake OAuth
	// e muda o status para active.
	Activate(ctx context.Context, store *entity.Store) error
	// Disconnect muda o status para disconnected e apaga o material de
	// credencial. Os pedidos históricos são preservados.
	Disconnect(ctx context.Context, id string) error
	// Delete remove a loja e, por cascata, seus pedidos (caminho "full remove").
	Delete(ctx context.Context, id string) error

	UpdateLastSync(ctx context.Context, id string, at time.Time) error
}
