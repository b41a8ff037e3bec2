package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/vendalink/vendalink-api/internal/application/order"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// Enqueuer cadastra tarefas na fila. Satisfeito por *asynq.Client; os testes
// injetam um fake.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SyncService executa as tarefas de sincronização de pedidos. Cada loja é uma
// tarefa independente: a falha de um marketplace não atrasa os demais, e o
// Asynq cuida do retry por loja.
type SyncService struct {
	storeRepo repository.StoreRepository
	orders    *order.OrderUseCase
	client    order.MarketplaceClient
	enqueuer  Enqueuer
	lookback  time.Duration
	log       zerolog.Logger
}

func NewSyncService(
	storeRepo repository.StoreRepository,
	orders *order.OrderUseCase,
	client order.MarketplaceClient,
	enqueuer Enqueuer,
	lookback time.Duration,
	log zerolog.Logger,
) *SyncService {
	return &SyncService{
		storeRepo: storeRepo,
		orders:    orders,
		client:    client,
		enqueuer:  enqueuer,
		lookback:  lookback,
		log:       log,
	}
}

// HandleSyncAllStores enfileira um sync por loja ativa.
func (s *SyncService) HandleSyncAllStores(ctx context.Context, _ *asynq.Task) error {
	stores, err := s.storeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("listar lojas ativas: %w", err)
	}
	for _, st := range stores {
		task, err := NewSyncStoreTask(SyncStorePayload{StoreID: st.ID})
		if err != nil {
			return fmt.Errorf("montar tarefa da loja %s: %w", st.ID, err)
		}
		if _, err := s.enqueuer.EnqueueContext(ctx, task, asynq.Queue(QueueSync)); err != nil {
			return fmt.Errorf("enfileirar sync da loja %s: %w", st.ID, err)
		}
	}
	s.log.Info().Int("stores", len(stores)).Msg("varredura de sync enfileirada")
	return nil
}

// HandleSyncStore busca os pedidos recentes da loja no marketplace e grava
// cada um via upsert. Pedido individual inválido (payload malformado) é
// registrado e pulado; uma falha de persistência aborta a tarefa, para que o
// Asynq reprocesse a janela inteira no retry — inócuo, porque o upsert é
// idempotente. O last_sync_at só avança quando a busca e a gravação
// completam.
func (s *SyncService) HandleSyncStore(ctx context.Context, t *asynq.Task) error {
	var payload SyncStorePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}

	store, err := s.storeRepo.GetByID(ctx, payload.StoreID)
	if err != nil {
		return fmt.Errorf("buscar loja %s: %w", payload.StoreID, err)
	}
	if store == nil || !store.Connected() {
		// Loja removida ou desconectada após o enqueue; nada a fazer.
		return nil
	}

	since := time.Now().Add(-s.lookback)
	if store.LastSyncAt != nil && store.LastSyncAt.Before(since) {
		since = *store.LastSyncAt
	}

	startedAt := time.Now()
	payloads, err := s.client.FetchOrders(ctx, store, since)
	if err != nil {
		return fmt.Errorf("buscar pedidos da loja %s: %w", store.ID, err)
	}

	synced := 0
	for _, p := range payloads {
		if _, err := s.orders.Upsert(ctx, store.ID, p); err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				// Pedido malformado nunca será aceito; pular não perde nada.
				s.log.Warn().Err(err).
					Str("store_id", store.ID).
					Str("external_id", p.ExternalID).
					Msg("pedido descartado no sync")
				continue
			}
			return fmt.Errorf("gravar pedido %s da loja %s: %w", p.ExternalID, store.ID, err)
		}
		synced++
	}

	if err := s.storeRepo.UpdateLastSync(ctx, store.ID, startedAt); err != nil {
		return fmt.Errorf("atualizar last_sync_at da loja %s: %w", store.ID, err)
	}

	s.log.Info().
		Str("store_id", store.ID).
		Str("marketplace", store.Marketplace).
		Int("fetched", len(payloads)).
		Int("synced", synced).
		Msg("sync da loja concluído")
	return nil
}
