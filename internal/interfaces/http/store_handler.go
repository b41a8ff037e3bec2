package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/application/store"
)

// StoreHandler trata as rotas de lojas de marketplace (protegido).
type StoreHandler struct {
	uc *store.StoreUseCase
}

func NewStoreHandler(uc *store.StoreUseCase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

// Connect registra a loja em pending, aguardando o callback OAuth.
// POST /api/stores
func (h *StoreHandler) Connect(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConnectStoreRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	st, err := h.uc.Connect(c.Context(), userID, companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

// Activate conclui o handshake OAuth: grava identidade externa e credenciais.
// POST /api/stores/:id/activate
func (h *StoreHandler) Activate(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ActivateStoreRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	st, err := h.uc.Activate(c.Context(), userID, companyID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

// Disconnect desativa a loja preservando o histórico de pedidos.
// POST /api/stores/:id/disconnect
func (h *StoreHandler) Disconnect(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Disconnect(c.Context(), userID, companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Remove apaga a loja e os pedidos dela (cascata). Requer admin.
// DELETE /api/stores/:id
func (h *StoreHandler) Remove(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Remove(c.Context(), userID, companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List lista as lojas da empresa.
// GET /api/stores
func (h *StoreHandler) List(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.List(c.Context(), userID, companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID devolve a loja.
// GET /api/stores/:id
func (h *StoreHandler) GetByID(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	st, err := h.uc.Get(c.Context(), userID, companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}
