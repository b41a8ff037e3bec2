package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker embrulha o servidor Asynq e o scheduler que dispara a varredura
// periódica de sync.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	log       zerolog.Logger
}

// WorkerConfig dependências para subir o worker.
type WorkerConfig struct {
	RedisOpts    asynq.RedisClientOpt
	Sync         *SyncService
	Concurrency  int
	SyncInterval time.Duration
	Logger       zerolog.Logger
}

// NewWorker monta servidor, mux e scheduler. O intervalo vira uma expressão
// @every do scheduler; zero desativa a varredura automática.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	server := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueSync: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSyncAllStores, cfg.Sync.HandleSyncAllStores)
	mux.HandleFunc(TaskTypeSyncStore, cfg.Sync.HandleSyncStore)

	var scheduler *asynq.Scheduler
	if cfg.SyncInterval > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		spec := fmt.Sprintf("@every %s", cfg.SyncInterval)
		if _, err := scheduler.Register(spec, NewSyncAllStoresTask(), asynq.Queue(QueueSync)); err != nil {
			return nil, fmt.Errorf("registrar varredura de sync: %w", err)
		}
	}

	return &Worker{server: server, mux: mux, scheduler: scheduler, log: cfg.Logger}, nil
}

// Run processa tarefas até o contexto ser cancelado.
func (w *Worker) Run(ctx context.Context) error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("iniciar scheduler: %w", err)
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}
