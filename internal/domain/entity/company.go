package entity

import "time"

// Company representa uma organização/tenant do sistema. É a raiz do
// multi-tenant: toda loja, membro e pedido pertence a exatamente uma Company.
type Company struct {
	ID        string
	Name      string
	CNPJ      string            // CNPJ da empresa (opcional; único quando presente)
	Address   string
	LogoURL   string
	Status    string            // active, inactive
	Settings  map[string]string // preferências opacas (persistidas como JSONB)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status válidos para Company.
const (
	CompanyStatusActive   = "active"
	CompanyStatusInactive = "inactive"
)
