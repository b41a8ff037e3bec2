package entity

import "time"

// Roles válidos para CompanyMember, em ordem decrescente de privilégio.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// roleRank ordena os roles: owner > admin > manager > member.
var roleRank = map[string]int{
	RoleOwner:   4,
	RoleAdmin:   3,
	RoleManager: 2,
	RoleMember:  1,
}

// ValidRole indica se a string é um role conhecido.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast compara dois roles na hierarquia. Roles desconhecidos nunca
// satisfazem.
func RoleAtLeast(role, minRole string) bool {
	have, ok := roleRank[role]
	if !ok {
		return false
	}
	want, ok := roleRank[minRole]
	if !ok {
		return false
	}
	return have >= want
}

// CompanyMember liga um usuário a uma Company com um role.
// Uma linha sem AcceptedAt e com InviteToken presente é um convite pendente;
// o token é de uso único e deixa de valer na aceitação.
type CompanyMember struct {
	ID           string
	CompanyID    string
	UserID       string // vazio até o convite ser aceito
	Email        string // denormalizado; só tem utilidade antes da aceitação
	Role         string // owner, admin, manager, member
	IsActive     bool
	InviteToken  string // único quando presente
	InviteSentAt *time.Time
	AcceptedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Pending indica se o membro ainda não aceitou o convite.
func (m *CompanyMember) Pending() bool {
	return m.AcceptedAt == nil && m.InviteToken != ""
}

// Authorizes verifica se o membro atende ao role mínimo exigido.
// Exige IsActive; um membro desativado não autoriza nada.
func (m *CompanyMember) Authorizes(requiredRole string) bool {
	if m == nil || !m.IsActive {
		return false
	}
	have, ok := roleRank[m.Role]
	if !ok {
		return false
	}
	want, ok := roleRank[requiredRole]
	if !ok {
		return false
	}
	return have >= want
}
