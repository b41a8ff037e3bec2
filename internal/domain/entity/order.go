package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order é um pedido de marketplace, uma linha por pedido externo.
// Os dados de cliente ficam denormalizados na própria linha (leitura dominante
// sem join); o índice derivado StoreCustomer é mantido a partir deles.
// (StoreID, ExternalID) é único: re-sync do mesmo pedido atualiza a linha
// existente, nunca insere duplicata.
type Order struct {
	ID         string
	StoreID    string
	ExternalID string // id do pedido no marketplace (obrigatório)

	// Referências cruzadas opcionais usadas para etiquetas e "packs" fiscais.
	ExternalOrderID    string
	ExternalShipmentID string
	ExternalPackID     string

	Marketplace      string
	Status           string // status bruto do marketplace, armazenado verbatim
	StatusNormalized string // bucket canônico (ver domínio marketplace)
	Total            decimal.Decimal
	OrderCreatedAt   time.Time // data de criação no marketplace, distinta de CreatedAt

	CustomerName    string
	CustomerEmail   string // marketplaces podem omitir
	CustomerPhone   string
	CustomerCity    string
	CustomerState   string
	CustomerAddress string
	CustomerZipCode string

	RawData   []byte // snapshot JSON do payload de origem (auditoria/replay)
	CreatedAt time.Time
	UpdatedAt time.Time
}
