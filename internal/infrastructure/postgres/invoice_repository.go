package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementação de InvoiceRepository.
type InvoiceRepo struct {
	q Querier
}

func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, order_id, number, series, access_key, xml_content, pdf_url,
	issue_date, status, error_message, sent_to_marketplace, sent_at, created_at, updated_at`

// Create grava a nota pendente. Chave de acesso e order_id são únicos; a
// violação vira ErrDuplicate para a camada de cima decidir a mensagem.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, order_id, number, series, access_key, xml_content,
			pdf_url, issue_date, status, error_message, sent_to_marketplace, sent_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.OrderID, inv.Number, nullIfEmpty(inv.Series),
		nullIfEmpty(inv.AccessKey), nullIfEmpty(inv.XMLContent), nullIfEmpty(inv.PDFURL),
		inv.IssueDate, inv.Status, nullIfEmpty(inv.ErrorMessage),
		inv.SentToMarketplace, inv.SentAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("nota fiscal já registrada para o pedido ou chave de acesso: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getBy(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

func (r *InvoiceRepo) GetByOrder(ctx context.Context, orderID string) (*entity.Invoice, error) {
	return r.getBy(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_id = $1`, orderID)
}

// GetByOrderForUpdate tranca a linha da nota na transação corrente. Usado no
// attach para serializar duas tentativas concorrentes sobre o mesmo pedido.
func (r *InvoiceRepo) GetByOrderForUpdate(ctx context.Context, orderID string) (*entity.Invoice, error) {
	return r.getBy(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_id = $1 FOR UPDATE`, orderID)
}

// GetByIDForCompany devolve a nota apenas se o pedido dela pertence ao tenant.
func (r *InvoiceRepo) GetByIDForCompany(ctx context.Context, id, companyID string) (*entity.Invoice, error) {
	query := `
		SELECT ` + prefixColumns("i", invoiceColumns) + `
		FROM invoices i
		JOIN orders o ON o.id = i.order_id
		JOIN stores s ON s.id = o.store_id
		WHERE i.id = $1 AND s.company_id = $2`
	return r.getBy(ctx, query, id, companyID)
}

// ReplaceFailed sobrescreve os dados fiscais de uma nota que falhou e volta o
// status para pendente, limpando o erro anterior. Condicional no status; o
// chamador segura a linha com FOR UPDATE, então zero linhas afetadas aqui é
// um bug de fluxo, não uma corrida.
func (r *InvoiceRepo) ReplaceFailed(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET
			number = $2, series = $3, access_key = $4, xml_content = $5, pdf_url = $6,
			issue_date = $7, status = 'pending', error_message = NULL, updated_at = now()
		WHERE id = $1 AND status = 'failed'`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, nullIfEmpty(inv.Series), nullIfEmpty(inv.AccessKey),
		nullIfEmpty(inv.XMLContent), nullIfEmpty(inv.PDFURL), inv.IssueDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("chave de acesso já registrada em outra nota: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("replace failed invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("nota fiscal não está em falha: %w", domain.ErrInvalidState)
	}
	return nil
}

// MarkSent transiciona pending->sent num único statement condicional; devolve
// (nil, nil) quando a nota não estava mais pendente.
func (r *InvoiceRepo) MarkSent(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `
		UPDATE invoices SET
			status = 'sent', sent_to_marketplace = TRUE, sent_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + invoiceColumns
	updated, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark invoice sent: %w", err)
	}
	return updated, nil
}

// MarkFailed transiciona pending->failed registrando o motivo; (nil, nil)
// quando a nota não estava pendente.
func (r *InvoiceRepo) MarkFailed(ctx context.Context, id, errorMessage string) (*entity.Invoice, error) {
	query := `
		UPDATE invoices SET status = 'failed', error_message = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + invoiceColumns
	updated, err := scanInvoice(r.q.QueryRow(ctx, query, id, errorMessage))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark invoice failed: %w", err)
	}
	return updated, nil
}

func (r *InvoiceRepo) getBy(ctx context.Context, query string, args ...any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var series, accessKey, xmlContent, pdfURL, errorMessage *string
	err := row.Scan(
		&inv.ID, &inv.OrderID, &inv.Number, &series, &accessKey, &xmlContent,
		&pdfURL, &inv.IssueDate, &inv.Status, &errorMessage,
		&inv.SentToMarketplace, &inv.SentAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Series = derefStr(series)
	inv.AccessKey = derefStr(accessKey)
	inv.XMLContent = derefStr(xmlContent)
	inv.PDFURL = derefStr(pdfURL)
	inv.ErrorMessage = derefStr(errorMessage)
	return &inv, nil
}
