package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/application/tenant"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes em memória das portas de persistência
// ──────────────────────────────────────────────────────────────────────────────

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: map[string]*entity.Company{}}
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	for _, ex := range r.companies {
		if ex.CNPJ != "" && ex.CNPJ == c.CNPJ {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) GetByCNPJ(_ context.Context, cnpj string) (*entity.Company, error) {
	for _, c := range r.companies {
		if c.CNPJ == cnpj {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, c *entity.Company) error {
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

type fakeMemberRepo struct {
	members map[string]*entity.CompanyMember
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[string]*entity.CompanyMember{}}
}

func (r *fakeMemberRepo) Create(_ context.Context, m *entity.CompanyMember) error {
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id string) (*entity.CompanyMember, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMemberRepo) GetByUserAndCompany(_ context.Context, userID, companyID string) (*entity.CompanyMember, error) {
	for _, m := range r.members {
		if m.UserID == userID && m.CompanyID == companyID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) GetActiveByEmail(_ context.Context, companyID, email string) (*entity.CompanyMember, error) {
	for _, m := range r.members {
		if m.CompanyID == companyID && m.Email == email && (m.IsActive || m.Pending()) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.CompanyMember, error) {
	var out []*entity.CompanyMember
	for _, m := range r.members {
		if m.CompanyID == companyID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ConsumeInviteToken(_ context.Context, token, userID string, at time.Time) (*entity.CompanyMember, error) {
	for _, m := range r.members {
		if m.InviteToken == token && m.AcceptedAt == nil {
			m.UserID = userID
			m.AcceptedAt = &at
			m.IsActive = true
			m.InviteToken = ""
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) SetActive(_ context.Context, memberID string, active bool) error {
	m, ok := r.members[memberID]
	if !ok {
		return domain.ErrNotFound
	}
	m.IsActive = active
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) BindCompany(_ context.Context, userID, companyID string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.CompanyID = companyID
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type tenantFixture struct {
	uc      *tenant.TenantUseCase
	users   *fakeUserRepo
	members *fakeMemberRepo
}

func newTenantFixture(t *testing.T) *tenantFixture {
	t.Helper()
	companies := newFakeCompanyRepo()
	members := newFakeMemberRepo()
	users := newFakeUserRepo()
	return &tenantFixture{
		uc:      tenant.NewTenantUseCase(companies, members, users),
		users:   users,
		members: members,
	}
}

func (f *tenantFixture) seedUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &entity.User{
		ID: id, Email: id + "@exemplo.com.br", Name: "Usuário " + id, Status: "active",
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateCompany
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateCompany_CriadorViraOwnerAtivo(t *testing.T) {
	f := newTenantFixture(t)
	f.seedUser(t, "u1")

	company, err := f.uc.CreateCompany(context.Background(), "u1", dto.CreateCompanyRequest{
		Name: "Loja do Zé ME", CNPJ: "12345678000190",
	})
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, entity.CompanyStatusActive, company.Status)

	member, err := f.members.GetByUserAndCompany(context.Background(), "u1", company.ID)
	require.NoError(t, err)
	require.NotNil(t, member, "o criador deve virar membro da empresa")
	assert.Equal(t, entity.RoleOwner, member.Role)
	assert.True(t, member.IsActive)
	assert.NotNil(t, member.AcceptedAt, "o owner nasce aceito, sem convite")

	user, err := f.users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, company.ID, user.CompanyID, "o usuário deve ficar vinculado à empresa criada")
}

func TestCreateCompany_NomeEmBranco(t *testing.T) {
	f := newTenantFixture(t)
	f.seedUser(t, "u1")

	_, err := f.uc.CreateCompany(context.Background(), "u1", dto.CreateCompanyRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateCompany_UsuarioJaTemEmpresa(t *testing.T) {
	f := newTenantFixture(t)
	f.seedUser(t, "u1")
	_, err := f.uc.CreateCompany(context.Background(), "u1", dto.CreateCompanyRequest{Name: "Primeira"})
	require.NoError(t, err)

	_, err = f.uc.CreateCompany(context.Background(), "u1", dto.CreateCompanyRequest{Name: "Segunda"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateCompany_CNPJDuplicado(t *testing.T) {
	f := newTenantFixture(t)
	f.seedUser(t, "u1")
	f.seedUser(t, "u2")

	_, err := f.uc.CreateCompany(context.Background(), "u1", dto.CreateCompanyRequest{
		Name: "Empresa A", CNPJ: "12345678000190",
	})
	require.NoError(t, err)

	_, err = f.uc.CreateCompany(context.Background(), "u2", dto.CreateCompanyRequest{
		Name: "Empresa B", CNPJ: "12345678000190",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Convites
// ──────────────────────────────────────────────────────────────────────────────

func inviteFixture(t *testing.T) (*tenantFixture, string) {
	t.Helper()
	f := newTenantFixture(t)
	f.seedUser(t, "owner")
	company, err := f.uc.CreateCompany(context.Background(), "owner", dto.CreateCompanyRequest{Name: "Vende Mais LTDA"})
	require.NoError(t, err)
	return f, company.ID
}

func TestInviteMember_TokenSoNaRespostaDoInvite(t *testing.T) {
	f, companyID := inviteFixture(t)

	invited, err := f.uc.InviteMember(context.Background(), "owner", companyID, dto.InviteMemberRequest{
		Email: "  Maria@Exemplo.com.br ", Role: entity.RoleManager,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, invited.InviteToken, "a resposta do invite carrega o token para montar o link")
	assert.True(t, invited.Pending)
	assert.Equal(t, "maria@exemplo.com.br", invited.Email, "email deve ser normalizado")

	// Na listagem o token não aparece.
	members, err := f.uc.ListMembers(context.Background(), "owner", companyID)
	require.NoError(t, err)
	for _, m := range members {
		assert.Empty(t, m.InviteToken, "o token de convite nunca aparece em listagens")
	}
}

func TestInviteMember_RoleOwnerNaoConvidavel(t *testing.T) {
	f, companyID := inviteFixture(t)

	_, err := f.uc.InviteMember(context.Background(), "owner", companyID, dto.InviteMemberRequest{
		Email: "x@exemplo.com.br", Role: entity.RoleOwner,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInviteMember_EmailJaConvidado(t *testing.T) {
	f, companyID := inviteFixture(t)

	_, err := f.uc.InviteMember(context.Background(), "owner", companyID, dto.InviteMemberRequest{
		Email: "maria@exemplo.com.br", Role: entity.RoleMember,
	})
	require.NoError(t, err)

	_, err = f.uc.InviteMember(context.Background(), "owner", companyID, dto.InviteMemberRequest{
		Email: "maria@exemplo.com.br", Role: entity.RoleMember,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAcceptInvite_TokenDeUsoUnico(t *testing.T) {
	f, companyID := inviteFixture(t)
	f.seedUser(t, "maria")
	f.seedUser(t, "intruso")

	invited, err := f.uc.InviteMember(context.Background(), "owner", companyID, dto.InviteMemberRequest{
		Email: "maria@exemplo.com.br", Role: entity.RoleManager,
	})
	require.NoError(t, err)

	member, err := f.uc.AcceptInvite(context.Background(), invited.InviteToken, "maria")
	require.NoError(t, err)
	assert.Equal(t, "maria", member.UserID)
	assert.False(t, member.Pending)
	assert.True(t, member.IsActive)

	// Segunda aceitação com o mesmo token: indistinguível de token inexistente.
	_, err = f.uc.AcceptInvite(context.Background(), invited.InviteToken, "intruso")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAcceptInvite_TokenDesconhecido(t *testing.T) {
	f, _ := inviteFixture(t)
	f.seedUser(t, "maria")

	_, err := f.uc.AcceptInvite(context.Background(), "token-que-nao-existe", "maria")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Authorize e desativação
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthorize_HierarquiaDeRoles(t *testing.T) {
	f, companyID := inviteFixture(t)
	f.seedUser(t, "gerente")

	invited, err := f.uc.InviteMember(context.Background(), "owner", companyID, dto.InviteMemberRequest{
		Email: "gerente@exemplo.com.br", Role: entity.RoleManager,
	})
	require.NoError(t, err)
	_, err = f.uc.AcceptInvite(context.Background(), invited.InviteToken, "gerente")
	require.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, f.uc.Authorize(ctx, "owner", companyID, entity.RoleOwner))
	assert.NoError(t, f.uc.Authorize(ctx, "gerente", companyID, entity.RoleManager))
	assert.NoError(t, f.uc.Authorize(ctx, "gerente", companyID, entity.RoleMember),
		"manager satisfaz exigência de member")
	assert.ErrorIs(t, f.uc.Authorize(ctx, "gerente", companyID, entity.RoleAdmin), domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.Authorize(ctx, "desconhecido", companyID, entity.RoleMember), domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.Authorize(ctx, "owner", "outra-empresa", entity.RoleMember), domain.ErrForbidden,
		"membro de uma empresa não autoriza em outra")
}

func TestDeactivateMember_OwnerProtegido(t *testing.T) {
	f, companyID := inviteFixture(t)

	ownerMember, err := f.members.GetByUserAndCompany(context.Background(), "owner", companyID)
	require.NoError(t, err)

	err = f.uc.DeactivateMember(context.Background(), "owner", companyID, ownerMember.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "o owner nunca pode ser desativado")
}

func TestDeactivateMember_MembroDesativadoPerdeAcesso(t *testing.T) {
	f, companyID := inviteFixture(t)
	f.seedUser(t, "maria")

	invited, err := f.uc.InviteMember(context.Background(), "owner", companyID, dto.InviteMemberRequest{
		Email: "maria@exemplo.com.br", Role: entity.RoleManager,
	})
	require.NoError(t, err)
	accepted, err := f.uc.AcceptInvite(context.Background(), invited.InviteToken, "maria")
	require.NoError(t, err)

	require.NoError(t, f.uc.DeactivateMember(context.Background(), "owner", companyID, accepted.ID))

	err = f.uc.Authorize(context.Background(), "maria", companyID, entity.RoleMember)
	assert.True(t, errors.Is(err, domain.ErrForbidden), "membro desativado não autoriza nada")
}
