package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.RegisterAdmin(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.LoginAdmin(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) LoginAgent(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.LoginAgent(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) AdminProfile(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	admin, err := h.authService.AdminProfile(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewAdminResponse(admin))
}

func (h *AuthHandler) AgentProfile(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	agent, err := h.authService.AgentProfile(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewAgentResponse(agent))
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.ChangePassword(c.UserContext(), actor, &req); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated successfully"})
}
