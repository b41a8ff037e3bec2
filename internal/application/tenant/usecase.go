// Package tenant contém os casos de uso do diretório de tenants: empresas,
// membros, convites e autorização por role.
package tenant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// TenantUseCase casos de uso de empresa e membros. Toda escrita de outra área
// (lojas, notas) passa por Authorize antes de tocar o banco.
type TenantUseCase struct {
	companyRepo repository.CompanyRepository
	memberRepo  repository.MemberRepository
	userRepo    repository.UserRepository
}

// NewTenantUseCase constrói o caso de uso com as portas de persistência.
func NewTenantUseCase(
	companyRepo repository.CompanyRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
) *TenantUseCase {
	return &TenantUseCase{companyRepo: companyRepo, memberRepo: memberRepo, userRepo: userRepo}
}

// CreateCompany cria a empresa e o membro owner vinculado ao chamador (o
// primeiro usuário registrado vira owner implícito). Devolve ErrInvalidInput
// se o nome estiver em branco e ErrDuplicate se o CNPJ já estiver registrado.
func (uc *TenantUseCase) CreateCompany(ctx context.Context, userID string, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nome da empresa é obrigatório: %w", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.CompanyID != "" {
		return nil, fmt.Errorf("usuário já pertence a uma empresa: %w", domain.ErrConflict)
	}
	if in.CNPJ != "" {
		existing, err := uc.companyRepo.GetByCNPJ(ctx, in.CNPJ)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("CNPJ já registrado: %w", domain.ErrDuplicate)
		}
	}

	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		CNPJ:      in.CNPJ,
		Address:   in.Address,
		LogoURL:   in.LogoURL,
		Status:    entity.CompanyStatusActive,
		Settings:  map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	// Owner já nasce aceito e ativo; é o único owner da empresa.
	owner := &entity.CompanyMember{
		ID:         uuid.New().String(),
		CompanyID:  company.ID,
		UserID:     userID,
		Role:       entity.RoleOwner,
		IsActive:   true,
		AcceptedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.memberRepo.Create(ctx, owner); err != nil {
		return nil, err
	}
	if err := uc.userRepo.BindCompany(ctx, userID, company.ID); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// GetMyCompany devolve a empresa corrente do usuário autenticado.
func (uc *TenantUseCase) GetMyCompany(ctx context.Context, userID string) (*dto.CompanyResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.CompanyID == "" {
		return nil, domain.ErrNotFound
	}
	company, err := uc.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return toCompanyResponse(company), nil
}

// UpdateCompany aplica campos não vazios sobre a empresa (owner/admin).
// Settings substitui chave a chave; nunca remove chaves existentes.
func (uc *TenantUseCase) UpdateCompany(ctx context.Context, userID, companyID string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := uc.Authorize(ctx, userID, companyID, entity.RoleAdmin); err != nil {
		return nil, err
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		company.Name = strings.TrimSpace(in.Name)
	}
	if in.Address != "" {
		company.Address = in.Address
	}
	if in.LogoURL != "" {
		company.LogoURL = in.LogoURL
	}
	if len(in.Settings) > 0 {
		if company.Settings == nil {
			company.Settings = map[string]string{}
		}
		for k, v := range in.Settings {
			company.Settings[k] = v
		}
	}
	company.UpdatedAt = time.Now()
	if err := uc.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// InviteMember cria um convite pendente com token de uso único (owner/admin).
// Devolve ErrConflict se já existe membro ativo ou convite pendente com o
// mesmo email na empresa.
func (uc *TenantUseCase) InviteMember(ctx context.Context, userID, companyID string, in dto.InviteMemberRequest) (*dto.MemberResponse, error) {
	if err := uc.Authorize(ctx, userID, companyID, entity.RoleAdmin); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, fmt.Errorf("email é obrigatório: %w", domain.ErrInvalidInput)
	}
	if !entity.ValidRole(in.Role) || in.Role == entity.RoleOwner {
		return nil, fmt.Errorf("role inválido para convite: %w", domain.ErrInvalidInput)
	}
	existing, err := uc.memberRepo.GetActiveByEmail(ctx, companyID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("já existe membro ou convite com esse email: %w", domain.ErrConflict)
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}
	now := time.Now()
	member := &entity.CompanyMember{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Email:        email,
		Role:         in.Role,
		IsActive:     false,
		InviteToken:  token,
		InviteSentAt: &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}
	resp := toMemberResponse(member)
	resp.InviteToken = token // só na resposta do invite, para montar o link
	return resp, nil
}

// AcceptInvite consome o token de forma atômica: no máximo uma chamada
// concorrente vence, as demais recebem ErrNotFound (token desconhecido e token
// já consumido são indistinguíveis de propósito).
func (uc *TenantUseCase) AcceptInvite(ctx context.Context, token, userID string) (*dto.MemberResponse, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	member, err := uc.memberRepo.ConsumeInviteToken(ctx, token, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.userRepo.BindCompany(ctx, userID, member.CompanyID); err != nil {
		return nil, err
	}
	return toMemberResponse(member), nil
}

// ListMembers lista os membros (ativos e pendentes) da empresa do chamador.
func (uc *TenantUseCase) ListMembers(ctx context.Context, userID, companyID string) ([]dto.MemberResponse, error) {
	if err := uc.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	members, err := uc.memberRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, *toMemberResponse(m))
	}
	return out, nil
}

// DeactivateMember desativa um membro aceito (owner/admin). O owner não pode
// ser desativado.
func (uc *TenantUseCase) DeactivateMember(ctx context.Context, userID, companyID, memberID string) error {
	if err := uc.Authorize(ctx, userID, companyID, entity.RoleAdmin); err != nil {
		return err
	}
	member, err := uc.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil || member.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if member.Role == entity.RoleOwner {
		return fmt.Errorf("o owner não pode ser desativado: %w", domain.ErrForbidden)
	}
	return uc.memberRepo.SetActive(ctx, memberID, false)
}

// Authorize verifica se o usuário é membro ativo da empresa com role maior ou
// igual ao exigido (owner > admin > manager > member). Devolve ErrForbidden em
// caso negativo.
func (uc *TenantUseCase) Authorize(ctx context.Context, userID, companyID, requiredRole string) error {
	if userID == "" || companyID == "" {
		return domain.ErrForbidden
	}
	member, err := uc.memberRepo.GetByUserAndCompany(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if member == nil || !member.Authorizes(requiredRole) {
		return domain.ErrForbidden
	}
	return nil
}

// newInviteToken gera um token opaco de 64 hex chars (256 bits).
func newInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		CNPJ:      c.CNPJ,
		Address:   c.Address,
		LogoURL:   c.LogoURL,
		Status:    c.Status,
		Settings:  c.Settings,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMemberResponse(m *entity.CompanyMember) *dto.MemberResponse {
	if m == nil {
		return nil
	}
	return &dto.MemberResponse{
		ID:         m.ID,
		CompanyID:  m.CompanyID,
		UserID:     m.UserID,
		Email:      m.Email,
		Role:       m.Role,
		IsActive:   m.IsActive,
		Pending:    m.Pending(),
		AcceptedAt: m.AcceptedAt,
		CreatedAt:  m.CreatedAt,
	}
}
