package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

var _ repository.MetricsRepository = (*MetricsRepo)(nil)

// MetricsRepo agrega pedidos para o dashboard direto no banco. Nenhuma
// escrita; sempre opera sobre status_normalized para que vocabulários
// distintos de marketplace contem juntos.
type MetricsRepo struct {
	q Querier
}

func NewMetricsRepository(q Querier) *MetricsRepo {
	return &MetricsRepo{q: q}
}

// revenueFilter expressão FILTER aplicada às somas de receita; contagens de
// pedidos nunca passam por ela.
func revenueFilter(includeCancelled bool) string {
	if includeCancelled {
		return "TRUE"
	}
	return "o.status_normalized <> 'cancelled'"
}

// GetTotals devolve receita e quantidade de pedidos da janela.
func (r *MetricsRepo) GetTotals(ctx context.Context, f repository.MetricsFilter) (decimal.Decimal, int64, error) {
	where, args := buildMetricsFilter(f)
	query := `
		SELECT COALESCE(SUM(o.total) FILTER (WHERE ` + revenueFilter(f.IncludeCancelled) + `), 0), COUNT(*)
		FROM orders o
		JOIN stores s ON s.id = o.store_id
		WHERE ` + where
	var revenue decimal.Decimal
	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&revenue, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("metrics totals: %w", err)
	}
	return revenue, count, nil
}

// CountByStatus conta pedidos por status normalizado na janela.
func (r *MetricsRepo) CountByStatus(ctx context.Context, f repository.MetricsFilter) ([]repository.StatusCount, error) {
	where, args := buildMetricsFilter(f)
	query := `
		SELECT o.status_normalized, COUNT(*)
		FROM orders o
		JOIN stores s ON s.id = o.store_id
		WHERE ` + where + `
		GROUP BY o.status_normalized`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("metrics by status: %w", err)
	}
	defer rows.Close()
	var counts []repository.StatusCount
	for rows.Next() {
		var c repository.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// RevenueByDay devolve a série diária em ordem cronológica. Dias sem pedido
// não aparecem; a camada de cima decide se preenche zeros.
func (r *MetricsRepo) RevenueByDay(ctx context.Context, f repository.MetricsFilter) ([]repository.DayRevenue, error) {
	where, args := buildMetricsFilter(f)
	query := `
		SELECT date_trunc('day', o.order_created_at)::date AS day,
			COALESCE(SUM(o.total) FILTER (WHERE ` + revenueFilter(f.IncludeCancelled) + `), 0),
			COUNT(*)
		FROM orders o
		JOIN stores s ON s.id = o.store_id
		WHERE ` + where + `
		GROUP BY day
		ORDER BY day`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("metrics by day: %w", err)
	}
	defer rows.Close()
	var days []repository.DayRevenue
	for rows.Next() {
		var d repository.DayRevenue
		if err := rows.Scan(&d.Day, &d.Revenue, &d.Orders); err != nil {
			return nil, fmt.Errorf("scan day revenue: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// PerStore devolve receita e pedidos por loja da empresa na janela,
// incluindo lojas sem pedidos (LEFT JOIN).
func (r *MetricsRepo) PerStore(ctx context.Context, f repository.MetricsFilter) ([]repository.StoreSummary, error) {
	query := `
		SELECT s.id, s.name, s.marketplace,
			COALESCE(SUM(o.total) FILTER (WHERE ` + revenueFilter(f.IncludeCancelled) + `), 0),
			COUNT(o.id)
		FROM stores s
		LEFT JOIN orders o
			ON o.store_id = s.id AND o.order_created_at >= $2 AND o.order_created_at <= $3
		WHERE s.company_id = $1
		GROUP BY s.id, s.name, s.marketplace
		ORDER BY s.name`
	rows, err := r.q.Query(ctx, query, f.CompanyID, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("metrics per store: %w", err)
	}
	defer rows.Close()
	var stores []repository.StoreSummary
	for rows.Next() {
		var s repository.StoreSummary
		if err := rows.Scan(&s.StoreID, &s.StoreName, &s.Marketplace, &s.Revenue, &s.Orders); err != nil {
			return nil, fmt.Errorf("scan store summary: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func buildMetricsFilter(f repository.MetricsFilter) (string, []any) {
	conds := []string{"s.company_id = $1"}
	args := []any{f.CompanyID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.StoreID != "" {
		add("o.store_id = $%d", f.StoreID)
	}
	add("o.order_created_at >= $%d", f.From)
	add("o.order_created_at <= $%d", f.To)
	return strings.Join(conds, " AND "), args
}
