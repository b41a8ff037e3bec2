package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vendalink/vendalink-api/internal/application/billing"
	"github.com/vendalink/vendalink-api/internal/application/dto"
)

// InvoiceHandler trata o ciclo de vida das notas fiscais (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Attach anexa os dados fiscais emitidos externamente a um pedido. Se já
// existir nota em failed para o pedido, substitui e volta a pending (retry).
// POST /api/invoices
func (h *InvoiceHandler) Attach(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AttachInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	inv, err := h.uc.AttachFiscalData(c.Context(), userID, companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// MarkSent registra a confirmação de envio ao marketplace (pending → sent).
// POST /api/invoices/:id/mark-sent
func (h *InvoiceHandler) MarkSent(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	inv, err := h.uc.MarkSent(c.Context(), userID, companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}

// MarkFailed registra a falha de envio (pending → failed) com o motivo.
// POST /api/invoices/:id/mark-failed
func (h *InvoiceHandler) MarkFailed(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.MarkFailedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	inv, err := h.uc.MarkFailed(c.Context(), userID, companyID, c.Params("id"), in.ErrorMessage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}

// GetByOrder devolve a nota fiscal do pedido, se houver.
// GET /api/orders/:id/invoice
func (h *InvoiceHandler) GetByOrder(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	inv, err := h.uc.GetByOrder(c.Context(), userID, companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if inv == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido sem nota fiscal"})
	}
	return c.JSON(inv)
}
