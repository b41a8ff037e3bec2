package repository

import (
	"context"

	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// InvoiceRepository porta de persistência para notas fiscais.
// As transições de estado são aplicadas como UPDATEs condicionais no status
// corrente: zero linhas afetadas significa que a transição não era legal (ou a
// nota não existe) — o caso é re-lido para distinguir.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByOrder(ctx context.Context, orderID string) (*entity.Invoice, error)
	// GetByOrderForUpdate lê com SELECT ... FOR UPDATE; usar dentro de
	// transação para serializar attach/retry concorrentes.
	GetByOrderForUpdate(ctx context.Context, orderID string) (*entity.Invoice, error)
	// GetByIDForCompany escopa pela empresa dona da loja do pedido;
	// (nil, nil) quando fora do tenant ou inexistente.
	GetByIDForCompany(ctx context.Context, id, companyID string) (*entity.Invoice, error)

	// ReplaceFailed sobrescreve os dados fiscais de uma nota em failed e a
	// devolve a pending (semântica de retry). Condicional em status='failed'.
	ReplaceFailed(ctx context.Context, invoice *entity.Invoice) error

	// MarkSent aplica pending→sent de forma atômica. Devolve a nota
	// atualizada ou (nil, nil) se o status corrente não era pending.
	MarkSent(ctx context.Context, id string) (*entity.Invoice, error)
	// MarkFailed aplica pending→failed de forma atômica, gravando a mensagem.
	MarkFailed(ctx context.Context, id, errorMessage string) (*entity.Invoice, error)
}
