package dto

import "time"

// ConnectStoreRequest body para POST /api/stores. As credenciais chegam do
// handshake OAuth (colaborador externo); aqui só são consumidas.
type ConnectStoreRequest struct {
	Name        string `json:"name"`
	Marketplace string `json:"marketplace"` // MercadoLivre, Shopee, Amazon, Magalu
}

// ActivateStoreRequest body para POST /api/stores/:id/activate, chamado pelo
// callback OAuth quando o marketplace confirma a identidade da conta.
type ActivateStoreRequest struct {
	Nickname          string `json:"nickname,omitempty"`
	ExternalAccountID string `json:"external_account_id"`
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token,omitempty"`
}

// StoreResponse loja em respostas. Material de credencial nunca sai na API.
type StoreResponse struct {
	ID                string     `json:"id"`
	CompanyID         string     `json:"company_id,omitempty"`
	Name              string     `json:"name"`
	Marketplace       string     `json:"marketplace"`
	Status            string     `json:"status"`
	Nickname          string     `json:"nickname,omitempty"`
	ExternalAccountID string     `json:"external_account_id,omitempty"`
	LastSyncAt        *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// StoreListResponse listagem de lojas da empresa.
type StoreListResponse struct {
	Items []StoreResponse `json:"items"`
}
