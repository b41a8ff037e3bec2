package billing

import (
	"context"

	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// TxRunner executa o anexo de dados fiscais em transação: a leitura com lock
// da nota e a escrita que decide criar/sobrescrever precisam ser um único
// read-check-write atômico. Implementado por postgres.TxRunner.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}
