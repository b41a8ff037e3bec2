package entity

import "time"

// Marketplaces suportados (valores persistidos na coluna marketplace).
const (
	MarketplaceMercadoLivre = "MercadoLivre"
	MarketplaceShopee       = "Shopee"
	MarketplaceAmazon       = "Amazon"
	MarketplaceMagalu       = "Magalu"
)

// Status válidos para Store.
const (
	StoreStatusPending      = "pending"      // criada, aguardando o handshake OAuth
	StoreStatusActive       = "active"       // conectada e sincronizando
	StoreStatusInactive     = "inactive"     // pausada pelo usuário
	StoreStatusDisconnected = "disconnected" // credenciais revogadas; pedidos preservados
)

// ValidMarketplace indica se a string é um marketplace conhecido.
func ValidMarketplace(m string) bool {
	switch m {
	case MarketplaceMercadoLivre, MarketplaceShopee, MarketplaceAmazon, MarketplaceMagalu:
		return true
	}
	return false
}

// Store é uma conexão de marketplace pertencente a uma Company.
// A mesma conta de vendedor externa (marketplace + ExternalAccountID) não pode
// ser conectada duas vezes dentro do mesmo tenant.
type Store struct {
	ID                string
	CompanyID         string // vazio apenas na transição legada de lojas sem empresa
	UserID            string // referência legada ao dono original (opcional)
	Name              string
	Marketplace       string
	Status            string
	Nickname          string // apelido do vendedor no marketplace
	ExternalAccountID string // identidade da conta externa, preenchida na ativação
	AccessToken       string
	RefreshToken      string
	LastSyncAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Connected indica se a loja ainda possui credenciais utilizáveis.
func (s *Store) Connected() bool {
	return s.Status == StoreStatusActive || s.Status == StoreStatusInactive
}
