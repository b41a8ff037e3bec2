package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/application/tenant"
)

// CompanyHandler trata as rotas de empresa e membros (protegido).
type CompanyHandler struct {
	uc *tenant.TenantUseCase
}

func NewCompanyHandler(uc *tenant.TenantUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Create cria a empresa e torna o usuário autenticado o owner. Depois desta
// chamada o token antigo fica sem company_id; o cliente deve refazer o login.
// POST /api/companies
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	company, err := h.uc.CreateCompany(c.Context(), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// GetMine devolve a empresa do usuário autenticado.
// GET /api/companies/me
func (h *CompanyHandler) GetMine(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	company, err := h.uc.GetMyCompany(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

// Update atualiza perfil e settings (aditivo). Requer admin.
// PUT /api/companies/me
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	company, err := h.uc.UpdateCompany(c.Context(), userID, companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

// InviteMember convida um email para a empresa. Requer admin. A resposta é a
// única que carrega o invite_token (para compor o link de convite).
// POST /api/companies/me/members
func (h *CompanyHandler) InviteMember(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.InviteMemberRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	member, err := h.uc.InviteMember(c.Context(), userID, companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// AcceptInvite consome o token de convite para o usuário autenticado.
// POST /api/companies/invites/:token/accept
func (h *CompanyHandler) AcceptInvite(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token de convite obrigatório"})
	}
	member, err := h.uc.AcceptInvite(c.Context(), token, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member)
}

// ListMembers lista membros e convites pendentes da empresa.
// GET /api/companies/me/members
func (h *CompanyHandler) ListMembers(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	members, err := h.uc.ListMembers(c.Context(), userID, companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(members)
}

// DeactivateMember desativa um membro (owner é protegido). Requer admin.
// DELETE /api/companies/me/members/:id
func (h *CompanyHandler) DeactivateMember(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if userID == "" || companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	memberID := c.Params("id")
	if memberID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id obrigatório"})
	}
	if err := h.uc.DeactivateMember(c.Context(), userID, companyID, memberID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
