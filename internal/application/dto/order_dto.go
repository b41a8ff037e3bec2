package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderPayload é o pedido já buscado do marketplace, como o job de sync o
// entrega ao ledger. O ledger só persiste o que recebe; nenhuma chamada de API
// de marketplace acontece aqui.
type OrderPayload struct {
	ExternalID         string          `json:"external_id"`
	ExternalOrderID    string          `json:"external_order_id,omitempty"`
	ExternalShipmentID string          `json:"external_shipment_id,omitempty"`
	ExternalPackID     string          `json:"external_pack_id,omitempty"`
	Status             string          `json:"status"` // valor bruto do marketplace
	Total              decimal.Decimal `json:"total"`
	OrderCreatedAt     time.Time       `json:"order_created_at"`
	CustomerName       string          `json:"customer_name,omitempty"`
	CustomerEmail      string          `json:"customer_email,omitempty"`
	CustomerPhone      string          `json:"customer_phone,omitempty"`
	CustomerCity       string          `json:"customer_city,omitempty"`
	CustomerState      string          `json:"customer_state,omitempty"`
	CustomerAddress    string          `json:"customer_address,omitempty"`
	CustomerZipCode    string          `json:"customer_zip_code,omitempty"`
	RawData            json.RawMessage `json:"raw_data,omitempty"` // snapshot do payload de origem
}

// ListOrdersQuery query params para GET /api/orders.
type ListOrdersQuery struct {
	StoreID string `query:"store_id"`
	Status  string `query:"status"` // bucket canônico (pending, paid, ...)
	From    string `query:"from"`   // RFC 3339 ou YYYY-MM-DD
	To      string `query:"to"`
	PageRequest
}

// OrderResponse pedido em respostas.
type OrderResponse struct {
	ID                 string          `json:"id"`
	StoreID            string          `json:"store_id"`
	ExternalID         string          `json:"external_id"`
	ExternalOrderID    string          `json:"external_order_id,omitempty"`
	ExternalShipmentID string          `json:"external_shipment_id,omitempty"`
	ExternalPackID     string          `json:"external_pack_id,omitempty"`
	Marketplace        string          `json:"marketplace"`
	Status             string          `json:"status"`
	StatusNormalized   string          `json:"status_normalized"`
	Total              decimal.Decimal `json:"total"`
	OrderCreatedAt     time.Time       `json:"order_created_at"`
	CustomerName       string          `json:"customer_name,omitempty"`
	CustomerEmail      string          `json:"customer_email,omitempty"`
	CustomerPhone      string          `json:"customer_phone,omitempty"`
	CustomerCity       string          `json:"customer_city,omitempty"`
	CustomerState      string          `json:"customer_state,omitempty"`
	CustomerAddress    string          `json:"customer_address,omitempty"`
	CustomerZipCode    string          `json:"customer_zip_code,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// OrderListResponse listagem paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// StoreCustomerResponse entrada do índice derivado de clientes.
type StoreCustomerResponse struct {
	ID          string          `json:"id"`
	StoreID     string          `json:"store_id"`
	Email       string          `json:"email"`
	Name        string          `json:"name,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	City        string          `json:"city,omitempty"`
	State       string          `json:"state,omitempty"`
	OrderCount  int             `json:"order_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	LastOrderAt *time.Time      `json:"last_order_at,omitempty"`
}

// StoreCustomerListResponse listagem do índice de clientes.
type StoreCustomerListResponse struct {
	Items []StoreCustomerResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
