package billing_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendalink/vendalink-api/internal/application/billing"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// ─────────────────────────── fakes em memória ───────────────────────────

type fakeOrderRepo struct {
	orders  map[string]*entity.Order // id -> pedido
	company map[string]string        // id -> empresa dona da loja do pedido
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:  make(map[string]*entity.Order),
		company: make(map[string]string),
	}
}

func (f *fakeOrderRepo) Upsert(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrderRepo) GetByIDForCompany(ctx context.Context, id, companyID string) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok || f.company[id] != companyID {
		return nil, nil
	}
	return o, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) CountByFilter(ctx context.Context, filter repository.OrderFilter) (int, error) {
	return 0, nil
}

// fakeInvoiceRepo replica a semântica condicional do repositório real: as
// transições só se aplicam quando o status corrente permite.
type fakeInvoiceRepo struct {
	byOrder map[string]*entity.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{byOrder: make(map[string]*entity.Invoice)}
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if _, ok := f.byOrder[inv.OrderID]; ok {
		return domain.ErrDuplicate
	}
	cp := *inv
	f.byOrder[inv.OrderID] = &cp
	return nil
}

func (f *fakeInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	for _, inv := range f.byOrder {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) GetByOrder(ctx context.Context, orderID string) (*entity.Invoice, error) {
	inv, ok := f.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvoiceRepo) GetByOrderForUpdate(ctx context.Context, orderID string) (*entity.Invoice, error) {
	return f.GetByOrder(ctx, orderID)
}

func (f *fakeInvoiceRepo) GetByIDForCompany(ctx context.Context, id, companyID string) (*entity.Invoice, error) {
	// O escopo por empresa é verificado pelo join no repositório real; aqui o
	// fixture só guarda notas do tenant de teste.
	return f.GetByID(ctx, id)
}

func (f *fakeInvoiceRepo) ReplaceFailed(ctx context.Context, inv *entity.Invoice) error {
	stored, ok := f.byOrder[inv.OrderID]
	if !ok || stored.Status != entity.InvoiceStatusFailed {
		return domain.ErrInvalidState
	}
	cp := *inv
	cp.Status = entity.InvoiceStatusPending
	cp.ErrorMessage = ""
	f.byOrder[inv.OrderID] = &cp
	return nil
}

func (f *fakeInvoiceRepo) MarkSent(ctx context.Context, id string) (*entity.Invoice, error) {
	for _, inv := range f.byOrder {
		if inv.ID != id {
			continue
		}
		if inv.Status != entity.InvoiceStatusPending {
			return nil, nil
		}
		now := time.Now()
		inv.Status = entity.InvoiceStatusSent
		inv.SentToMarketplace = true
		inv.SentAt = &now
		inv.UpdatedAt = now
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) MarkFailed(ctx context.Context, id, errorMessage string) (*entity.Invoice, error) {
	for _, inv := range f.byOrder {
		if inv.ID != id {
			continue
		}
		if inv.Status != entity.InvoiceStatusPending {
			return nil, nil
		}
		inv.Status = entity.InvoiceStatusFailed
		inv.ErrorMessage = errorMessage
		inv.UpdatedAt = time.Now()
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

// fakeTxRunner apenas repassa os repositórios: os fakes já são atômicos.
type fakeTxRunner struct {
	orders   repository.OrderRepository
	invoices repository.InvoiceRepository
}

func (f *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(f.orders, f.invoices)
}

type allowAll struct{}

func (allowAll) Authorize(ctx context.Context, userID, companyID, requiredRole string) error {
	return nil
}

// ─────────────────────────── fixture ───────────────────────────

type billingFixture struct {
	uc       *billing.InvoiceUseCase
	orders   *fakeOrderRepo
	invoices *fakeInvoiceRepo
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	orders := newFakeOrderRepo()
	invoices := newFakeInvoiceRepo()
	orders.orders["pedido-1"] = &entity.Order{
		ID:      "pedido-1",
		StoreID: "loja-1",
	}
	orders.company["pedido-1"] = "empresa-1"
	tx := &fakeTxRunner{orders: orders, invoices: invoices}
	return &billingFixture{
		uc:       billing.NewInvoiceUseCase(tx, invoices, orders, allowAll{}),
		orders:   orders,
		invoices: invoices,
	}
}

func attachRequest() dto.AttachInvoiceRequest {
	return dto.AttachInvoiceRequest{
		OrderID:   "pedido-1",
		Number:    "12345",
		Series:    "1",
		AccessKey: strings.Repeat("3", 44),
	}
}

// ─────────────────────────── AttachFiscalData ───────────────────────────

func TestAttachFiscalData_CriaNotaPendente(t *testing.T) {
	f := newBillingFixture(t)

	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, entity.InvoiceStatusPending, resp.Status, "nota recém anexada nasce em pending")
	assert.Equal(t, "pedido-1", resp.OrderID)
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.SentToMarketplace)
}

func TestAttachFiscalData_ChaveDeAcessoComTamanhoErrado(t *testing.T) {
	f := newBillingFixture(t)
	in := attachRequest()
	in.AccessKey = "123"

	_, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", in)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "chave de acesso NF-e tem exatamente 44 caracteres")
}

func TestAttachFiscalData_ChaveDeAcessoOpcional(t *testing.T) {
	f := newBillingFixture(t)
	in := attachRequest()
	in.AccessKey = ""

	_, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", in)

	require.NoError(t, err, "chave de acesso vazia é permitida")
}

func TestAttachFiscalData_CamposObrigatorios(t *testing.T) {
	f := newBillingFixture(t)
	in := attachRequest()
	in.Number = ""

	_, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", in)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAttachFiscalData_PedidoDeOutraEmpresa(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-2", attachRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound, "pedido fora do tenant é indistinguível de inexistente")
}

func TestAttachFiscalData_NotaPendenteExistenteConflita(t *testing.T) {
	f := newBillingFixture(t)
	_, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)

	_, err = f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "pendente")
}

func TestAttachFiscalData_NotaEnviadaEImutavel(t *testing.T) {
	f := newBillingFixture(t)
	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)
	_, err = f.uc.MarkSent(context.Background(), "user-1", "empresa-1", resp.ID)
	require.NoError(t, err)

	_, err = f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "enviada", "o conflito de nota enviada tem mensagem própria")
}

func TestAttachFiscalData_RetrySobrescreveNotaEmFalha(t *testing.T) {
	f := newBillingFixture(t)
	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)
	_, err = f.uc.MarkFailed(context.Background(), "user-1", "empresa-1", resp.ID, "rejeitada pela SEFAZ")
	require.NoError(t, err)

	retry := attachRequest()
	retry.Number = "12346"
	retry.AccessKey = strings.Repeat("7", 44)
	resp2, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", retry)

	require.NoError(t, err)
	assert.Equal(t, resp.ID, resp2.ID, "retry sobrescreve a mesma nota, nunca cria uma segunda")
	assert.Equal(t, entity.InvoiceStatusPending, resp2.Status, "retry devolve a nota a pending")
	assert.Equal(t, "12346", resp2.Number)
	assert.Empty(t, resp2.ErrorMessage, "o erro anterior é limpo no retry")

	stored, err := f.invoices.GetByOrder(context.Background(), "pedido-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPending, stored.Status)
	assert.Empty(t, stored.ErrorMessage)
}

// ─────────────────────────── MarkSent / MarkFailed ───────────────────────────

func TestMarkSent_TransicaoPendingParaSent(t *testing.T) {
	f := newBillingFixture(t)
	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)

	sent, err := f.uc.MarkSent(context.Background(), "user-1", "empresa-1", resp.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, sent.Status)
	assert.True(t, sent.SentToMarketplace)
	require.NotNil(t, sent.SentAt, "sent_at é carimbado na transição")
}

func TestMarkSent_SegundaChamadaFalha(t *testing.T) {
	f := newBillingFixture(t)
	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)
	_, err = f.uc.MarkSent(context.Background(), "user-1", "empresa-1", resp.ID)
	require.NoError(t, err)

	_, err = f.uc.MarkSent(context.Background(), "user-1", "empresa-1", resp.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "sent é terminal; repetir a transição é erro")
}

func TestMarkSent_NotaInexistente(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.uc.MarkSent(context.Background(), "user-1", "empresa-1", "nota-fantasma")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkFailed_GravaMensagemDeErro(t *testing.T) {
	f := newBillingFixture(t)
	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)

	failed, err := f.uc.MarkFailed(context.Background(), "user-1", "empresa-1", resp.ID, "rejeitada: duplicidade de NF-e")

	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusFailed, failed.Status)
	assert.Equal(t, "rejeitada: duplicidade de NF-e", failed.ErrorMessage)
}

func TestMarkFailed_MensagemObrigatoria(t *testing.T) {
	f := newBillingFixture(t)
	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)

	_, err = f.uc.MarkFailed(context.Background(), "user-1", "empresa-1", resp.ID, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkFailed_SobreNotaEnviadaFalha(t *testing.T) {
	f := newBillingFixture(t)
	resp, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)
	_, err = f.uc.MarkSent(context.Background(), "user-1", "empresa-1", resp.ID)
	require.NoError(t, err)

	_, err = f.uc.MarkFailed(context.Background(), "user-1", "empresa-1", resp.ID, "tarde demais")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ─────────────────────────── GetByOrder ───────────────────────────

func TestGetByOrder_PedidoSemNotaDevolveNil(t *testing.T) {
	f := newBillingFixture(t)

	resp, err := f.uc.GetByOrder(context.Background(), "user-1", "empresa-1", "pedido-1")

	require.NoError(t, err)
	assert.Nil(t, resp, "pedido sem nota fiscal devolve nil sem erro")
}

func TestGetByOrder_PedidoDeOutraEmpresa(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.uc.GetByOrder(context.Background(), "user-1", "empresa-2", "pedido-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByOrder_DevolveNotaDoPedido(t *testing.T) {
	f := newBillingFixture(t)
	attached, err := f.uc.AttachFiscalData(context.Background(), "user-1", "empresa-1", attachRequest())
	require.NoError(t, err)

	resp, err := f.uc.GetByOrder(context.Background(), "user-1", "empresa-1", "pedido-1")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, attached.ID, resp.ID)
	assert.Equal(t, attachRequest().AccessKey, resp.AccessKey)
}
