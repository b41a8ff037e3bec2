package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusCount quantidade de pedidos por bucket canônico de status.
type StatusCount struct {
	Status string
	Count  int64
}

// DayRevenue receita agregada de um dia do período.
type DayRevenue struct {
	Day     time.Time
	Revenue decimal.Decimal
	Orders  int64
}

// StoreSummary agregado por loja para o dashboard da empresa.
type StoreSummary struct {
	StoreID     string
	StoreName   string
	Marketplace string
	Revenue     decimal.Decimal
	Orders      int64
}

// MetricsFilter escopo das consultas de agregação. StoreID vazio = todas as
// lojas da empresa. IncludeCancelled controla apenas a receita; contagens de
// pedidos sempre incluem cancelados.
type MetricsFilter struct {
	CompanyID        string
	StoreID          string
	From             time.Time
	To               time.Time
	IncludeCancelled bool
}

// MetricsRepository consultas read-only de agregação sobre o ledger de pedidos.
type MetricsRepository interface {
	// GetTotals devolve receita (política de cancelados conforme o filtro) e
	// contagem total de pedidos da janela.
	GetTotals(ctx context.Context, f MetricsFilter) (revenue decimal.Decimal, orderCount int64, err error)
	CountByStatus(ctx context.Context, f MetricsFilter) ([]StatusCount, error)
	RevenueByDay(ctx context.Context, f MetricsFilter) ([]DayRevenue, error)
	PerStore(ctx context.Context, f MetricsFilter) ([]StoreSummary, error)
}
