package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/vendalink/vendalink-api/internal/application/order"
	"github.com/vendalink/vendalink-api/internal/application/tenant"
	"github.com/vendalink/vendalink-api/internal/infrastructure/marketplace"
	"github.com/vendalink/vendalink-api/internal/infrastructure/postgres"
	"github.com/vendalink/vendalink-api/internal/jobs"
	"github.com/vendalink/vendalink-api/pkg/config"
	"github.com/vendalink/vendalink-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: "vendalink-worker",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Int("interval_minutes", cfg.Sync.IntervalMinutes).
		Msg("iniciando worker de sincronização")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com o PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	tenantUC := tenant.NewTenantUseCase(companyRepo, memberRepo, userRepo)
	orderUC := order.NewOrderUseCase(txRunner, orderRepo, customerRepo, storeRepo, tenantUC)

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	asynqClient := asynq.NewClient(redisOpts)
	defer asynqClient.Close()

	syncSvc := jobs.NewSyncService(
		storeRepo,
		orderUC,
		marketplace.NewRouter(),
		asynqClient,
		time.Duration(cfg.Sync.LookbackHours)*time.Hour,
		log.Zerolog(),
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:    redisOpts,
		Sync:         syncSvc,
		Concurrency:  cfg.Sync.Concurrency,
		SyncInterval: time.Duration(cfg.Sync.IntervalMinutes) * time.Minute,
		Logger:       log.Zerolog(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("montar worker")
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker finalizado com erro")
	}

	log.Info().Msg("worker encerrado")
}
