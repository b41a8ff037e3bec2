package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vendalink/vendalink-api/internal/application/analytics"
	"github.com/vendalink/vendalink-api/internal/application/auth"
	"github.com/vendalink/vendalink-api/internal/application/billing"
	"github.com/vendalink/vendalink-api/internal/application/order"
	"github.com/vendalink/vendalink-api/internal/application/store"
	"github.com/vendalink/vendalink-api/internal/application/tenant"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	TenantUC    *tenant.TenantUseCase
	StoreUC     *store.StoreUseCase
	OrderUC     *order.OrderUseCase
	InvoiceUC   *billing.InvoiceUseCase
	DashboardUC *analytics.DashboardUseCase
	JWTSecret   string
}

// Router registra as rotas da API. O middleware RequireRole corta cedo com o
// role do token; a autorização definitiva (membro ativo, role vigente) é dos
// casos de uso.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rotas protegidas (Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Companies e membros
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.TenantUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/me", companyHandler.GetMine)
	companies.Put("/me", RequireRole(entity.RoleAdmin), companyHandler.Update)
	companies.Post("/me/members", RequireRole(entity.RoleAdmin), companyHandler.InviteMember)
	companies.Get("/me/members", companyHandler.ListMembers)
	companies.Delete("/me/members/:id", RequireRole(entity.RoleAdmin), companyHandler.DeactivateMember)
	companies.Post("/invites/:token/accept", companyHandler.AcceptInvite)

	// Stores (conexões de marketplace)
	stores := protected.Group("/stores")
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores.Post("/", RequireRole(entity.RoleManager), storeHandler.Connect)
	stores.Get("/", storeHandler.List)
	stores.Get("/:id", storeHandler.GetByID)
	stores.Post("/:id/activate", RequireRole(entity.RoleManager), storeHandler.Activate)
	stores.Post("/:id/disconnect", RequireRole(entity.RoleManager), storeHandler.Disconnect)
	stores.Delete("/:id", RequireRole(entity.RoleAdmin), storeHandler.Remove)

	// Orders (leitura; a escrita é do worker de sync)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/invoice", invoiceHandler.GetByOrder)

	// Customers (índice derivado)
	protected.Get("/customers", orderHandler.ListCustomers)

	// Invoices (ciclo de vida da nota fiscal)
	invoices := protected.Group("/invoices")
	invoices.Post("/", RequireRole(entity.RoleManager), invoiceHandler.Attach)
	invoices.Post("/:id/mark-sent", RequireRole(entity.RoleManager), invoiceHandler.MarkSent)
	invoices.Post("/:id/mark-failed", RequireRole(entity.RoleManager), invoiceHandler.MarkFailed)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", dashboardHandler.Get)
}
