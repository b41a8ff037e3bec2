package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusBreakdownDTO contagem de pedidos por bucket canônico.
type StatusBreakdownDTO struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DailyRevenueDTO receita de um dia da janela.
type DailyRevenueDTO struct {
	Day     string          `json:"day"` // YYYY-MM-DD
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// StoreBreakdownDTO agregado por loja.
type StoreBreakdownDTO struct {
	StoreID     string          `json:"store_id"`
	StoreName   string          `json:"store_name"`
	Marketplace string          `json:"marketplace"`
	Revenue     decimal.Decimal `json:"revenue"`
	Orders      int64           `json:"orders"`
}

// DashboardDTO resumo do período para GET /api/orders/metrics/dashboard.
// Receita considera só pedidos não cancelados (política configurável);
// OrderCount conta todos os pedidos da janela independente da política.
type DashboardDTO struct {
	PeriodStart       time.Time            `json:"period_start"`
	PeriodEnd         time.Time            `json:"period_end"`
	Revenue           decimal.Decimal      `json:"revenue"`
	OrderCount        int64                `json:"order_count"`
	AverageOrderValue decimal.Decimal      `json:"average_order_value"`
	OrdersByStatus    []StatusBreakdownDTO `json:"orders_by_status"`
	RevenueByDay      []DailyRevenueDTO    `json:"revenue_by_day"`
	PerStore          []StoreBreakdownDTO  `json:"per_store,omitempty"`
}
