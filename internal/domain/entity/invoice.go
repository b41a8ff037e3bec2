package entity

import "time"

// Status do ciclo de vida da nota fiscal.
//
//	(nenhuma) --anexar dados fiscais--> pending --mark sent--> sent
//	                                       |--mark failed--> failed --retry--> pending
//
// "sent" é terminal: uma nota enviada nunca muda de status.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusSent    = "sent"
	InvoiceStatusFailed  = "failed"
)

// AccessKeyLength é o comprimento exato da chave de acesso fiscal (NF-e).
const AccessKeyLength = 44

// Invoice é o documento fiscal de um Order (no máximo uma por pedido; uma
// retry sobrescreve a nota em failed, nunca cria uma segunda linha).
type Invoice struct {
	ID                string
	OrderID           string
	Number            string
	Series            string
	AccessKey         string // 44 caracteres quando presente; única globalmente
	XMLContent        string // XML da nota já emitida (chega pronto do ERP)
	PDFURL            string
	IssueDate         *time.Time
	Status            string
	ErrorMessage      string // preenchido apenas quando Status == failed
	SentToMarketplace bool
	SentAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
