package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vendalink/vendalink-api/internal/application/analytics"
	"github.com/vendalink/vendalink-api/internal/application/dto"
)

// DashboardHandler trata o resumo analítico do período (protegido).
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Get devolve o resumo dos últimos N dias (padrão 30, máximo 365).
// GET /api/dashboard?days=30&store_id=...
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	days := c.QueryInt("days", 0)
	summary, err := h.uc.GetDashboard(c.Context(), userID, companyID, c.Query("store_id"), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
