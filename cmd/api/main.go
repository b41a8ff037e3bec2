package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/vendalink/vendalink-api/internal/application/analytics"
	"github.com/vendalink/vendalink-api/internal/application/auth"
	"github.com/vendalink/vendalink-api/internal/application/billing"
	"github.com/vendalink/vendalink-api/internal/application/order"
	"github.com/vendalink/vendalink-api/internal/application/store"
	"github.com/vendalink/vendalink-api/internal/application/tenant"
	"github.com/vendalink/vendalink-api/internal/infrastructure/cache"
	"github.com/vendalink/vendalink-api/internal/infrastructure/postgres"
	httpRouter "github.com/vendalink/vendalink-api/internal/interfaces/http"
	"github.com/vendalink/vendalink-api/pkg/config"
	"github.com/vendalink/vendalink-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando API")

	if cfg.DB.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DB); err != nil {
			log.Fatal().Err(err).Msg("migrações do banco")
		}
	}

	ctx := context.Background()
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
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	metricsRepo := postgres.NewMetricsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	tenantUC := tenant.NewTenantUseCase(companyRepo, memberRepo, userRepo)
	authUC := auth.NewAuthUseCase(userRepo, memberRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	storeUC := store.NewStoreUseCase(storeRepo, tenantUC)
	orderUC := order.NewOrderUseCase(txRunner, orderRepo, customerRepo, storeRepo, tenantUC)
	invoiceUC := billing.NewInvoiceUseCase(txRunner, invoiceRepo, orderRepo, tenantUC)

	// Cache do dashboard: opcional, a API funciona sem Redis.
	var dashboardCache analytics.SummaryCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis indisponível, dashboard sem cache")
	} else {
		dashboardCache = cache.NewDashboardCache(redisClient, time.Duration(cfg.Analytics.CacheTTLSeconds)*time.Second)
	}
	dashboardUC := analytics.NewDashboardUseCase(metricsRepo, storeRepo, tenantUC, dashboardCache, analytics.Config{
		IncludeCancelledRevenue: cfg.Analytics.IncludeCancelledRevenue,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		TenantUC:    tenantUC,
		StoreUC:     storeUC,
		OrderUC:     orderUC,
		InvoiceUC:   invoiceUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	if err := redisClient.Close(); err != nil {
		log.Warn().Err(err).Msg("encerramento do Redis")
	}

	log.Info().Msg("aplicação encerrada")
}
