package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementação de CompanyRepository (usável com pool ou tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// Create persiste a empresa. Devolve domain.ErrDuplicate se o CNPJ já existe.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	settings, err := marshalSettings(company.Settings)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO companies (id, name, cnpj, address, logo_url, status, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(ctx, query,
		company.ID, company.Name, nullIfEmpty(company.CNPJ), nullIfEmpty(company.Address),
		nullIfEmpty(company.LogoURL), company.Status, settings,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cnpj já registrado: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtém uma empresa por ID. Devolve (nil, nil) se não existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByCNPJ obtém uma empresa pelo CNPJ.
func (r *CompanyRepo) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	return r.getBy(ctx, "cnpj = $1", cnpj)
}

func (r *CompanyRepo) getBy(ctx context.Context, where string, arg any) (*entity.Company, error) {
	query := `
		SELECT id, name, cnpj, address, logo_url, status, settings, created_at, updated_at
		FROM companies WHERE ` + where
	var c entity.Company
	var cnpj, address, logoURL *string
	var settings []byte
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Name, &cnpj, &address, &logoURL, &c.Status, &settings,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	c.CNPJ = derefStr(cnpj)
	c.Address = derefStr(address)
	c.LogoURL = derefStr(logoURL)
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &c.Settings); err != nil {
			return nil, fmt.Errorf("decode company settings: %w", err)
		}
	}
	return &c, nil
}

// Update atualiza os campos mutáveis da empresa.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	settings, err := marshalSettings(company.Settings)
	if err != nil {
		return err
	}
	query := `
		UPDATE companies
		SET name = $2, cnpj = $3, address = $4, logo_url = $5, status = $6,
		    settings = $7, updated_at = $8
		WHERE id = $1`
	_, err = r.q.Exec(ctx, query,
		company.ID, company.Name, nullIfEmpty(company.CNPJ), nullIfEmpty(company.Address),
		nullIfEmpty(company.LogoURL), company.Status, settings, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

func marshalSettings(settings map[string]string) ([]byte, error) {
	if settings == nil {
		settings = map[string]string{}
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode company settings: %w", err)
	}
	return data, nil
}
