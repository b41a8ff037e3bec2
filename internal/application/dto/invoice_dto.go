package dto

import "time"

// AttachInvoiceRequest body para POST /api/invoices: dados fiscais emitidos
// por um ERP externo, anexados a um pedido existente.
type AttachInvoiceRequest struct {
	OrderID    string     `json:"order_id"`
	Number     string     `json:"number"`
	Series     string     `json:"series,omitempty"`
	AccessKey  string     `json:"access_key,omitempty"` // 44 caracteres quando presente
	XMLContent string     `json:"xml_content,omitempty"`
	PDFURL     string     `json:"pdf_url,omitempty"`
	IssueDate  *time.Time `json:"issue_date,omitempty"`
}

// MarkFailedRequest body para POST /api/invoices/:id/mark-failed.
type MarkFailedRequest struct {
	ErrorMessage string `json:"error_message"`
}

// InvoiceResponse nota fiscal em respostas.
type InvoiceResponse struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"order_id"`
	Number            string     `json:"number"`
	Series            string     `json:"series,omitempty"`
	AccessKey         string     `json:"access_key,omitempty"`
	PDFURL            string     `json:"pdf_url,omitempty"`
	IssueDate         *time.Time `json:"issue_date,omitempty"`
	Status            string     `json:"status"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	SentToMarketplace bool       `json:"sent_to_marketplace"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
