// Package jobs contém as tarefas assíncronas de sincronização de pedidos,
// executadas pelo worker Asynq sobre Redis.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueSync fila dedicada da sincronização de pedidos.
	QueueSync = "sync"

	// TaskTypeSyncAllStores varre as lojas ativas e enfileira um
	// TaskTypeSyncStore por loja. Disparada pelo scheduler.
	TaskTypeSyncAllStores = "sync:stores"
	// TaskTypeSyncStore sincroniza os pedidos de uma loja.
	TaskTypeSyncStore = "sync:store"
)

// SyncStorePayload identifica a loja a sincronizar.
type SyncStorePayload struct {
	StoreID string `json:"store_id"`
}

// NewSyncAllStoresTask constrói a tarefa de varredura.
func NewSyncAllStoresTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSyncAllStores, nil)
}

// NewSyncStoreTask constrói a tarefa de sync de uma loja.
func NewSyncStoreTask(payload SyncStorePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSyncStore, data), nil
}
