package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/application/order"
)

// OrderHandler trata as rotas de leitura do ledger de pedidos (protegido).
// A escrita acontece só pelo caminho de sincronização (worker).
type OrderHandler struct {
	uc *order.OrderUseCase
}

func NewOrderHandler(uc *order.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// List lista pedidos com filtros de loja, status canônico e janela de datas.
// GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var q dto.ListOrdersQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	out, err := h.uc.List(c.Context(), userID, companyID, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID devolve um pedido do tenant.
// GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	o, err := h.uc.Get(c.Context(), userID, companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(o)
}

// ListCustomers lista o índice derivado de clientes da empresa.
// GET /api/customers
func (h *OrderHandler) ListCustomers(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	out, err := h.uc.ListCustomers(c.Context(), userID, companyID, c.Query("store_id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
