// Package analytics contém os casos de uso de agregação read-only sobre o
// ledger de pedidos (dashboard de receita e status).
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/marketplace"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

const (
	defaultPeriodDays = 30
	maxPeriodDays     = 365
)

// authorizer contrato mínimo de autorização por role (ver pacote tenant).
type authorizer interface {
	Authorize(ctx context.Context, userID, companyID, requiredRole string) error
}

// SummaryCache cache opcional do dashboard (Redis, TTL curto). Get devolve
// (nil, false) em miss; falhas de cache não derrubam a consulta.
type SummaryCache interface {
	Get(ctx context.Context, companyID, storeID string, days int) (*dto.DashboardDTO, bool)
	Set(ctx context.Context, companyID, storeID string, days int, summary *dto.DashboardDTO)
}

// Config políticas de agregação.
type Config struct {
	// IncludeCancelledRevenue inclui pedidos cancelados na receita.
	// A contagem de pedidos sempre os inclui, independente desta política.
	IncludeCancelledRevenue bool
}

// DashboardUseCase monta o resumo do período para a empresa (e opcionalmente
// uma loja). Leitura pura: nenhum efeito colateral além do cache.
type DashboardUseCase struct {
	metricsRepo repository.MetricsRepository
	storeRepo   repository.StoreRepository
	authz       authorizer
	cache       SummaryCache
	cfg         Config
}

// NewDashboardUseCase constrói o caso de uso. cache pode ser nil.
func NewDashboardUseCase(metricsRepo repository.MetricsRepository, storeRepo repository.StoreRepository, authz authorizer, cache SummaryCache, cfg Config) *DashboardUseCase {
	return &DashboardUseCase{metricsRepo: metricsRepo, storeRepo: storeRepo, authz: authz, cache: cache, cfg: cfg}
}

// GetDashboard devolve o resumo dos últimos `days` dias.
//
// Quatro consultas em paralelo (o padrão das demais telas de analítica):
//  1. GetTotals      → Revenue + OrderCount
//  2. CountByStatus  → OrdersByStatus (buckets canônicos + "other")
//  3. RevenueByDay   → série diária
//  4. PerStore       → quebra por loja (só quando storeID está vazio)
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, userID, companyID, storeID string, days int) (*dto.DashboardDTO, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultPeriodDays
	}
	if days > maxPeriodDays {
		days = maxPeriodDays
	}
	if storeID != "" {
		// Loja de outro tenant é indistinguível de inexistente.
		store, err := uc.storeRepo.GetByID(ctx, storeID)
		if err != nil {
			return nil, err
		}
		if store == nil || store.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}

	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, companyID, storeID, days); ok {
			return cached, nil
		}
	}

	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24*time.Hour - time.Nanosecond)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	f := repository.MetricsFilter{
		CompanyID:        companyID,
		StoreID:          storeID,
		From:             start,
		To:               end,
		IncludeCancelled: uc.cfg.IncludeCancelledRevenue,
	}

	type totalsResult struct {
		revenue decimal.Decimal
		count   int64
		err     error
	}
	type statusResult struct {
		rows []repository.StatusCount
		err  error
	}
	type dailyResult struct {
		rows []repository.DayRevenue
		err  error
	}
	type storesResult struct {
		rows []repository.StoreSummary
		err  error
	}

	totalsCh := make(chan totalsResult, 1)
	statusCh := make(chan statusResult, 1)
	dailyCh := make(chan dailyResult, 1)
	storesCh := make(chan storesResult, 1)

	go func() {
		revenue, count, err := uc.metricsRepo.GetTotals(ctx, f)
		totalsCh <- totalsResult{revenue, count, err}
	}()
	go func() {
		rows, err := uc.metricsRepo.CountByStatus(ctx, f)
		statusCh <- statusResult{rows, err}
	}()
	go func() {
		rows, err := uc.metricsRepo.RevenueByDay(ctx, f)
		dailyCh <- dailyResult{rows, err}
	}()
	go func() {
		if storeID != "" {
			storesCh <- storesResult{nil, nil}
			return
		}
		rows, err := uc.metricsRepo.PerStore(ctx, f)
		storesCh <- storesResult{rows, err}
	}()

	totals := <-totalsCh
	status := <-statusCh
	daily := <-dailyCh
	stores := <-storesCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totais: %w", totals.err)
	}
	if status.err != nil {
		return nil, fmt.Errorf("dashboard: status: %w", status.err)
	}
	if daily.err != nil {
		return nil, fmt.Errorf("dashboard: receita diária: %w", daily.err)
	}
	if stores.err != nil {
		return nil, fmt.Errorf("dashboard: por loja: %w", stores.err)
	}

	avg := decimal.Zero
	if totals.count > 0 {
		avg = totals.revenue.Div(decimal.NewFromInt(totals.count)).Round(2)
	}

	summary := &dto.DashboardDTO{
		PeriodStart:       start,
		PeriodEnd:         end,
		Revenue:           totals.revenue.Round(2),
		OrderCount:        totals.count,
		AverageOrderValue: avg,
		OrdersByStatus:    buildStatusBreakdown(status.rows),
		RevenueByDay:      buildDailySeries(daily.rows),
	}
	for _, s := range stores.rows {
		summary.PerStore = append(summary.PerStore, dto.StoreBreakdownDTO{
			StoreID:     s.StoreID,
			StoreName:   s.StoreName,
			Marketplace: s.Marketplace,
			Revenue:     s.Revenue.Round(2),
			Orders:      s.Orders,
		})
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, companyID, storeID, days, summary)
	}
	return summary, nil
}

// buildStatusBreakdown devolve os buckets canônicos na ordem fixa, zerando os
// ausentes, com "other" por último quando houver resíduo.
func buildStatusBreakdown(rows []repository.StatusCount) []dto.StatusBreakdownDTO {
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] += r.Count
	}
	out := make([]dto.StatusBreakdownDTO, 0, len(marketplace.CanonicalStatuses)+1)
	for _, s := range marketplace.CanonicalStatuses {
		out = append(out, dto.StatusBreakdownDTO{Status: s, Count: counts[s]})
	}
	if other := counts[marketplace.StatusOther]; other > 0 {
		out = append(out, dto.StatusBreakdownDTO{Status: marketplace.StatusOther, Count: other})
	}
	return out
}

func buildDailySeries(rows []repository.DayRevenue) []dto.DailyRevenueDTO {
	out := make([]dto.DailyRevenueDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DailyRevenueDTO{
			Day:     r.Day.Format("2006-01-02"),
			Revenue: r.Revenue.Round(2),
			Orders:  r.Orders,
		})
	}
	return out
}
