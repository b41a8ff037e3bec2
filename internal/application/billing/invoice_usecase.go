// Package billing contém os casos de uso do ciclo de vida da nota fiscal:
// anexar dados fiscais a um pedido e dirigir as transições pending/sent/failed.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

// authorizer contrato mínimo de autorização por role (ver pacote tenant).
type authorizer interface {
	Authorize(ctx context.Context, userID, companyID, requiredRole string) error
}

// InvoiceUseCase casos de uso da nota fiscal.
type InvoiceUseCase struct {
	tx          TxRunner
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
	authz       authorizer
}

// NewInvoiceUseCase constrói o caso de uso.
func NewInvoiceUseCase(
	tx TxRunner,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	authz authorizer,
) *InvoiceUseCase {
	return &InvoiceUseCase{tx: tx, invoiceRepo: invoiceRepo, orderRepo: orderRepo, authz: authz}
}

// AttachFiscalData anexa os dados fiscais emitidos (ERP externo) ao pedido.
//
// Sem nota para o pedido: cria em pending. Nota em failed: sobrescreve os
// campos e volta a pending (retry). Nota em pending ou sent: ErrConflict —
// uma nota enviada é imutável. Tudo corre numa transação com lock de linha,
// então um retry nunca corre em paralelo com um envio.
func (uc *InvoiceUseCase) AttachFiscalData(ctx context.Context, userID, companyID string, in dto.AttachInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleManager); err != nil {
		return nil, err
	}
	if in.OrderID == "" || in.Number == "" {
		return nil, fmt.Errorf("order_id e number são obrigatórios: %w", domain.ErrInvalidInput)
	}
	if in.AccessKey != "" && len(in.AccessKey) != entity.AccessKeyLength {
		return nil, fmt.Errorf("chave de acesso deve ter %d caracteres: %w", entity.AccessKeyLength, domain.ErrInvalidInput)
	}

	var result *entity.Invoice
	err := uc.tx.RunBilling(ctx, func(orderRepo repository.OrderRepository, invoiceRepo repository.InvoiceRepository) error {
		order, err := orderRepo.GetByIDForCompany(ctx, in.OrderID, companyID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}

		existing, err := invoiceRepo.GetByOrderForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		now := time.Now()
		switch {
		case existing == nil:
			result = &entity.Invoice{
				ID:         uuid.New().String(),
				OrderID:    in.OrderID,
				Number:     in.Number,
				Series:     in.Series,
				AccessKey:  in.AccessKey,
				XMLContent: in.XMLContent,
				PDFURL:     in.PDFURL,
				IssueDate:  in.IssueDate,
				Status:     entity.InvoiceStatusPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			return invoiceRepo.Create(ctx, result)

		case existing.Status == entity.InvoiceStatusFailed:
			// Retry: sobrescreve e volta a pending, limpando o erro anterior.
			existing.Number = in.Number
			existing.Series = in.Series
			existing.AccessKey = in.AccessKey
			existing.XMLContent = in.XMLContent
			existing.PDFURL = in.PDFURL
			existing.IssueDate = in.IssueDate
			existing.Status = entity.InvoiceStatusPending
			existing.ErrorMessage = ""
			existing.UpdatedAt = now
			result = existing
			return invoiceRepo.ReplaceFailed(ctx, existing)

		case existing.Status == entity.InvoiceStatusSent:
			return fmt.Errorf("nota fiscal já enviada ao marketplace: %w", domain.ErrConflict)

		default: // pending
			return fmt.Errorf("o pedido já possui nota fiscal pendente: %w", domain.ErrConflict)
		}
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(result), nil
}

// MarkSent aplica pending→sent. Qualquer outro status corrente devolve
// ErrInvalidState; duas chamadas concorrentes nunca vencem as duas, porque a
// transição é um UPDATE condicional único.
func (uc *InvoiceUseCase) MarkSent(ctx context.Context, userID, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleManager); err != nil {
		return nil, err
	}
	if _, err := uc.getScoped(ctx, invoiceID, companyID); err != nil {
		return nil, err
	}
	updated, err := uc.invoiceRepo.MarkSent(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// A linha existe (getScoped passou) mas não estava em pending.
		return nil, fmt.Errorf("nota fiscal não está pendente: %w", domain.ErrInvalidState)
	}
	return toInvoiceResponse(updated), nil
}

// MarkFailed aplica pending→failed com a mensagem de erro.
func (uc *InvoiceUseCase) MarkFailed(ctx context.Context, userID, companyID, invoiceID, errorMessage string) (*dto.InvoiceResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleManager); err != nil {
		return nil, err
	}
	if errorMessage == "" {
		return nil, fmt.Errorf("error_message é obrigatório: %w", domain.ErrInvalidInput)
	}
	if _, err := uc.getScoped(ctx, invoiceID, companyID); err != nil {
		return nil, err
	}
	updated, err := uc.invoiceRepo.MarkFailed(ctx, invoiceID, errorMessage)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("nota fiscal não está pendente: %w", domain.ErrInvalidState)
	}
	return toInvoiceResponse(updated), nil
}

// GetByOrder devolve a nota do pedido, ou ErrNotFound se o pedido não é do
// tenant. Pedido sem nota devolve (nil, nil).
func (uc *InvoiceUseCase) GetByOrder(ctx context.Context, userID, companyID, orderID string) (*dto.InvoiceResponse, error) {
	if err := uc.authz.Authorize(ctx, userID, companyID, entity.RoleMember); err != nil {
		return nil, err
	}
	order, err := uc.orderRepo.GetByIDForCompany(ctx, orderID, companyID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	invoice, err := uc.invoiceRepo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, nil
	}
	return toInvoiceResponse(invoice), nil
}

func (uc *InvoiceUseCase) getScoped(ctx context.Context, invoiceID, companyID string) (*entity.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByIDForCompany(ctx, invoiceID, companyID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func toInvoiceResponse(i *entity.Invoice) *dto.InvoiceResponse {
	if i == nil {
		return nil
	}
	return &dto.InvoiceResponse{
		ID:                i.ID,
		OrderID:           i.OrderID,
		Number:            i.Number,
		Series:            i.Series,
		AccessKey:         i.AccessKey,
		PDFURL:            i.PDFURL,
		IssueDate:         i.IssueDate,
		Status:            i.Status,
		ErrorMessage:      i.ErrorMessage,
		SentToMarketplace: i.SentToMarketplace,
		SentAt:            i.SentAt,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}
