package analytics_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendalink/vendalink-api/internal/application/analytics"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/marketplace"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// ─────────────────────────── fakes em memória ───────────────────────────

// fakeMetricsRepo devolve dados fixos e grava o último filtro recebido, para
// inspecionar a janela e a política de cancelados que o caso de uso montou.
type fakeMetricsRepo struct {
	revenue    decimal.Decimal
	orderCount int64
	byStatus   []repository.StatusCount
	byDay      []repository.DayRevenue
	perStore   []repository.StoreSummary

	lastFilter    repository.MetricsFilter
	totalsCalls   int
	perStoreCalls int
}

func (f *fakeMetricsRepo) GetTotals(ctx context.Context, filter repository.MetricsFilter) (decimal.Decimal, int64, error) {
	f.lastFilter = filter
	f.totalsCalls++
	return f.revenue, f.orderCount, nil
}

func (f *fakeMetricsRepo) CountByStatus(ctx context.Context, filter repository.MetricsFilter) ([]repository.StatusCount, error) {
	return f.byStatus, nil
}

func (f *fakeMetricsRepo) RevenueByDay(ctx context.Context, filter repository.MetricsFilter) ([]repository.DayRevenue, error) {
	return f.byDay, nil
}

func (f *fakeMetricsRepo) PerStore(ctx context.Context, filter repository.MetricsFilter) ([]repository.StoreSummary, error) {
	f.perStoreCalls++
	return f.perStore, nil
}

type fakeCache struct {
	entries map[string]*dto.DashboardDTO
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*dto.DashboardDTO)}
}

func cacheKey(companyID, storeID string, days int) string {
	return fmt.Sprintf("%s|%s|%d", companyID, storeID, days)
}

func (f *fakeCache) Get(ctx context.Context, companyID, storeID string, days int) (*dto.DashboardDTO, bool) {
	f.gets++
	s, ok := f.entries[cacheKey(companyID, storeID, days)]
	return s, ok
}

func (f *fakeCache) Set(ctx context.Context, companyID, storeID string, days int, summary *dto.DashboardDTO) {
	f.sets++
	f.entries[cacheKey(companyID, storeID, days)] = summary
}

// fakeStoreRepo só resolve a dona da loja; o resto do porto não é usado
// pelo dashboard.
type fakeStoreRepo struct {
	stores map[string]*entity.Store
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: map[string]*entity.Store{
		"loja-1": {ID: "loja-1", CompanyID: "empresa-1", Name: "Loja Central"},
	}}
}

func (f *fakeStoreRepo) Create(ctx context.Context, s *entity.Store) error { return nil }

func (f *fakeStoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	return f.stores[id], nil
}

func (f *fakeStoreRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Store, error) {
	return nil, nil
}

func (f *fakeStoreRepo) ListActive(ctx context.Context) ([]*entity.Store, error) { return nil, nil }

func (f *fakeStoreRepo) Activate(ctx context.Context, s *entity.Store) error { return nil }

func (f *fakeStoreRepo) Disconnect(ctx context.Context, id string) error { return nil }

func (f *fakeStoreRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeStoreRepo) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	return nil
}

type allowAll struct{}

func (allowAll) Authorize(ctx context.Context, userID, companyID, requiredRole string) error {
	return nil
}

func newDashboardUC(repo *fakeMetricsRepo, cache analytics.SummaryCache, cfg analytics.Config) *analytics.DashboardUseCase {
	return analytics.NewDashboardUseCase(repo, newFakeStoreRepo(), allowAll{}, cache, cfg)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// ─────────────────────────── GetDashboard ───────────────────────────

func TestGetDashboard_TicketMedio(t *testing.T) {
	repo := &fakeMetricsRepo{revenue: mustDecimal(t, "1000.00"), orderCount: 3}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	resp, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)

	require.NoError(t, err)
	assert.Equal(t, "1000", resp.Revenue.String())
	assert.Equal(t, int64(3), resp.OrderCount)
	assert.Equal(t, "333.33", resp.AverageOrderValue.String(), "ticket médio arredondado a 2 casas")
}

func TestGetDashboard_SemPedidosTicketMedioZero(t *testing.T) {
	repo := &fakeMetricsRepo{revenue: decimal.Zero, orderCount: 0}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	resp, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)

	require.NoError(t, err)
	assert.True(t, resp.AverageOrderValue.IsZero(), "janela vazia não divide por zero")
}

func TestGetDashboard_JanelaPadraoELimite(t *testing.T) {
	repo := &fakeMetricsRepo{revenue: decimal.Zero}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	_, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 0)
	require.NoError(t, err)
	defaultSpan := repo.lastFilter.To.Sub(repo.lastFilter.From)
	assert.InDelta(t, 30*24.0, defaultSpan.Hours(), 1.0, "days<=0 vira a janela padrão de 30 dias")

	_, err = uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 9999)
	require.NoError(t, err)
	cappedSpan := repo.lastFilter.To.Sub(repo.lastFilter.From)
	assert.InDelta(t, 365*24.0, cappedSpan.Hours(), 1.0, "a janela é limitada a 365 dias")
}

func TestGetDashboard_LojaDeOutraEmpresa(t *testing.T) {
	repo := &fakeMetricsRepo{revenue: decimal.Zero}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	_, err := uc.GetDashboard(context.Background(), "user-1", "empresa-2", "loja-1", 30)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound, "loja fora do tenant é indistinguível de inexistente")
	assert.Zero(t, repo.totalsCalls, "o id estrangeiro nunca chega ao filtro de agregação")
}

func TestGetDashboard_LojaInexistente(t *testing.T) {
	repo := &fakeMetricsRepo{revenue: decimal.Zero}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	_, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "loja-fantasma", 30)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetDashboard_PoliticaDeCanceladosVaiAoFiltro(t *testing.T) {
	repo := &fakeMetricsRepo{revenue: decimal.Zero}
	uc := newDashboardUC(repo, nil, analytics.Config{IncludeCancelledRevenue: true})

	_, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "loja-1", 7)

	require.NoError(t, err)
	assert.True(t, repo.lastFilter.IncludeCancelled)
	assert.Equal(t, "loja-1", repo.lastFilter.StoreID)
	assert.Equal(t, "empresa-1", repo.lastFilter.CompanyID)
}

func TestGetDashboard_QuebraPorStatusNaOrdemCanonica(t *testing.T) {
	repo := &fakeMetricsRepo{
		revenue: decimal.Zero,
		byStatus: []repository.StatusCount{
			{Status: "shipped", Count: 2},
			{Status: "paid", Count: 5},
		},
	}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	resp, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)

	require.NoError(t, err)
	require.Len(t, resp.OrdersByStatus, len(marketplace.CanonicalStatuses),
		"todos os buckets canônicos aparecem, zerados quando ausentes")
	byStatus := make(map[string]int64, len(resp.OrdersByStatus))
	for i, row := range resp.OrdersByStatus {
		assert.Equal(t, marketplace.CanonicalStatuses[i], row.Status, "a ordem de exibição é fixa")
		byStatus[row.Status] = row.Count
	}
	assert.Equal(t, int64(5), byStatus["paid"])
	assert.Equal(t, int64(2), byStatus["shipped"])
	assert.Equal(t, int64(0), byStatus["cancelled"])
}

func TestGetDashboard_BucketOtherSoAparececomResiduo(t *testing.T) {
	repo := &fakeMetricsRepo{
		revenue:  decimal.Zero,
		byStatus: []repository.StatusCount{{Status: marketplace.StatusOther, Count: 4}},
	}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	resp, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)

	require.NoError(t, err)
	last := resp.OrdersByStatus[len(resp.OrdersByStatus)-1]
	assert.Equal(t, marketplace.StatusOther, last.Status, "other fecha a lista quando há resíduo")
	assert.Equal(t, int64(4), last.Count)
}

func TestGetDashboard_QuebraPorLojaSoNaVisaoDaEmpresa(t *testing.T) {
	repo := &fakeMetricsRepo{
		revenue: decimal.Zero,
		perStore: []repository.StoreSummary{
			{StoreID: "loja-1", StoreName: "Loja Central", Marketplace: "mercadolivre", Revenue: mustDecimal(t, "10.505"), Orders: 1},
		},
	}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	resp, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)
	require.NoError(t, err)
	require.Len(t, resp.PerStore, 1)
	assert.Equal(t, "10.51", resp.PerStore[0].Revenue.String())

	resp, err = uc.GetDashboard(context.Background(), "user-1", "empresa-1", "loja-1", 30)
	require.NoError(t, err)
	assert.Empty(t, resp.PerStore, "visão de loja única não traz a quebra por loja")
	assert.Equal(t, 1, repo.perStoreCalls, "a consulta por loja nem chega ao repositório")
}

func TestGetDashboard_CacheEvitaConsulta(t *testing.T) {
	repo := &fakeMetricsRepo{revenue: mustDecimal(t, "50.00"), orderCount: 1}
	cache := newFakeCache()
	uc := newDashboardUC(repo, cache, analytics.Config{})

	first, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "miss popula o cache")

	second, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.totalsCalls, "hit não volta ao repositório")
	assert.Equal(t, first.Revenue.String(), second.Revenue.String())

	_, err = uc.GetDashboard(context.Background(), "user-1", "empresa-1", "loja-1", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.totalsCalls, "chave inclui a loja; escopo diferente é miss")
}

func TestGetDashboard_SerieDiariaFormatada(t *testing.T) {
	repo := &fakeMetricsRepo{
		revenue: decimal.Zero,
		byDay: []repository.DayRevenue{
			{Day: mustDay(t, "2026-08-30"), Revenue: mustDecimal(t, "120.999"), Orders: 2},
			{Day: mustDay(t, "2026-08-31"), Revenue: mustDecimal(t, "0"), Orders: 0},
		},
	}
	uc := newDashboardUC(repo, nil, analytics.Config{})

	resp, err := uc.GetDashboard(context.Background(), "user-1", "empresa-1", "", 30)

	require.NoError(t, err)
	require.Len(t, resp.RevenueByDay, 2)
	assert.Equal(t, "2026-08-30", resp.RevenueByDay[0].Day)
	assert.Equal(t, "121", resp.RevenueByDay[0].Revenue.String(), "arredondado a 2 casas")
	assert.Equal(t, int64(2), resp.RevenueByDay[0].Orders)
}
