package dto

import "time"

// CreateCompanyRequest body para POST /api/companies.
type CreateCompanyRequest struct {
	Name    string `json:"name"`
	CNPJ    string `json:"cnpj,omitempty"`
	Address string `json:"address,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
}

// UpdateCompanyRequest body para PUT /api/companies/:id. Campos vazios não
// alteram o valor atual (atualização aditiva).
type UpdateCompanyRequest struct {
	Name     string            `json:"name,omitempty"`
	Address  string            `json:"address,omitempty"`
	LogoURL  string            `json:"logo_url,omitempty"`
	Settings map[string]string `json:"settings,omitempty"`
}

// CompanyResponse empresa em respostas.
type CompanyResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CNPJ      string            `json:"cnpj,omitempty"`
	Address   string            `json:"address,omitempty"`
	LogoURL   string            `json:"logo_url,omitempty"`
	Status    string            `json:"status"`
	Settings  map[string]string `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// InviteMemberRequest body para POST /api/companies/:id/members.
type InviteMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"` // admin, manager, member (owner não é convidável)
}

// MemberResponse membro da empresa em respostas. O token de convite só
// aparece na resposta do próprio invite (para composição do link de convite).
type MemberResponse struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	UserID      string     `json:"user_id,omitempty"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	Pending     bool       `json:"pending"`
	InviteToken string     `json:"invite_token,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
