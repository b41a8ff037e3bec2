package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreCustomer é o índice derivado de clientes por loja, chaveado por
// (StoreID, Email). É recalculado incrementalmente a cada upsert de pedido e
// serve só para visões cross-pedido; a fonte de verdade são os campos
// denormalizados de Order.
type StoreCustomer struct {
	ID          string
	StoreID     string
	Email       string
	Name        string
	Phone       string
	City        string
	State       string
	OrderCount  int
	TotalSpent  decimal.Decimal
	LastOrderAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
