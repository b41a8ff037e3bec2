package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

var _ repository.MemberRepository = (*MemberRepo)(nil)

// MemberRepo implementação de MemberRepository (usável com pool ou tx).
type MemberRepo struct {
	q Querier
}

// NewMemberRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewMemberRepository(q Querier) *MemberRepo {
	return &MemberRepo{q: q}
}

const memberColumns = `id, company_id, user_id, email, role, is_active,
	invite_token, invite_sent_at, accepted_at, created_at, updated_at`

// Create persiste o membro. O índice único parcial de owner garante no máximo
// um owner por empresa; violações viram domain.ErrDuplicate.
func (r *MemberRepo) Create(ctx context.Context, member *entity.CompanyMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	query := `
		INSERT INTO company_members (id, company_id, user_id, email, role, is_active,
			invite_token, invite_sent_at, accepted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		member.ID, member.CompanyID, nullIfEmpty(member.UserID), nullIfEmpty(member.Email),
		member.Role, member.IsActive, nullIfEmpty(member.InviteToken),
		member.InviteSentAt, member.AcceptedAt, member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membro duplicado: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// GetByID obtém um membro por ID.
func (r *MemberRepo) GetByID(ctx context.Context, id string) (*entity.CompanyMember, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByUserAndCompany obtém a associação de um usuário com uma empresa.
func (r *MemberRepo) GetByUserAndCompany(ctx context.Context, userID, companyID string) (*entity.CompanyMember, error) {
	query := `SELECT ` + memberColumns + ` FROM company_members WHERE user_id = $1 AND company_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, userID, companyID))
}

// GetActiveByEmail localiza membro ativo ou convite pendente pelo email na
// empresa. Membros desativados não contam (podem ser convidados de novo).
func (r *MemberRepo) GetActiveByEmail(ctx context.Context, companyID, email string) (*entity.CompanyMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM company_members m
		WHERE m.company_id = $1
		  AND (
			(m.accepted_at IS NULL AND m.invite_token IS NOT NULL AND m.email = $2)
			OR (m.is_active AND EXISTS (
				SELECT 1 FROM users u WHERE u.id = m.user_id AND u.email = $2
			))
		  )
		LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID, email))
}

// ListByCompany lista os membros da empresa, owner primeiro.
func (r *MemberRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM company_members
		WHERE company_id = $1
		ORDER BY CASE role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 WHEN 'manager' THEN 2 ELSE 3 END, created_at`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()
	var list []*entity.CompanyMember
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ConsumeInviteToken aceita o convite num único UPDATE condicional: só a
// primeira chamada concorrente encontra accepted_at IS NULL e vence; as
// demais recebem (nil, nil). O token é anulado na mesma operação.
func (r *MemberRepo) ConsumeInviteToken(ctx context.Context, token, userID string, at time.Time) (*entity.CompanyMember, error) {
	query := `
		UPDATE company_members
		SET user_id = $2, accepted_at = $3, is_active = TRUE,
		    invite_token = NULL, updated_at = $3
		WHERE invite_token = $1 AND accepted_at IS NULL
		RETURNING ` + memberColumns
	member, err := r.scanOne(r.q.QueryRow(ctx, query, token, userID, at))
	if err != nil {
		return nil, fmt.Errorf("consume invite token: %w", err)
	}
	return member, nil
}

// SetActive ativa/desativa um membro aceito.
func (r *MemberRepo) SetActive(ctx context.Context, memberID string, active bool) error {
	query := `UPDATE company_members SET is_active = $2, updated_at = now() WHERE id = $1 AND accepted_at IS NOT NULL`
	_, err := r.q.Exec(ctx, query, memberID, active)
	if err != nil {
		return fmt.Errorf("set member active: %w", err)
	}
	return nil
}

func (r *MemberRepo) getBy(ctx context.Context, where string, arg any) (*entity.CompanyMember, error) {
	query := `SELECT ` + memberColumns + ` FROM company_members WHERE ` + where
	return r.scanOne(r.q.QueryRow(ctx, query, arg))
}

func (r *MemberRepo) scanOne(row pgx.Row) (*entity.CompanyMember, error) {
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (r *MemberRepo) scanRow(rows pgx.Rows) (*entity.CompanyMember, error) {
	m, err := scanMember(rows)
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return m, nil
}

func scanMember(row pgx.Row) (*entity.CompanyMember, error) {
	var m entity.CompanyMember
	var userID, email, inviteToken *string
	err := row.Scan(
		&m.ID, &m.CompanyID, &userID, &email, &m.Role, &m.IsActive,
		&inviteToken, &m.InviteSentAt, &m.AcceptedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.UserID = derefStr(userID)
	m.Email = derefStr(email)
	m.InviteToken = derefStr(inviteToken)
	return &m, nil
}
