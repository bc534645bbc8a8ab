package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AgentHandler serves both /agents (administrator realm) and /sub-agents
// (agent realm).
type AgentHandler struct {
	agentService *services.AgentService
}

func NewAgentHandler(agentService *services.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

func (h *AgentHandler) CreateAgent(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	agent, err := h.agentService.CreateAgent(c.UserContext(), actor, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAgentResponse(agent))
}

func (h *AgentHandler) ListAgents(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	agents, err := h.agentService.ListAgents(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewAgentListResponse(agents))
}

func (h *AgentHandler) DeleteAgent(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid agent ID")
	}

	if err := h.agentService.DeleteAgent(c.UserContext(), actor, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Agent deleted successfully"})
}

func (h *AgentHandler) CreateSubAgent(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	agent, err := h.agentService.CreateSubAgent(c.UserContext(), actor, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAgentResponse(agent))
}

func (h *AgentHandler) ListSubAgents(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	agents, err := h.agentService.ListSubAgents(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewAgentListResponse(agents))
}

func (h *AgentHandler) DeleteSubAgent(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	// an unparseable id cannot name one of the caller's sub-agents
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, services.ErrNotFound)
	}

	if err := h.agentService.DeleteSubAgent(c.UserContext(), actor, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Sub-agent deleted successfully"})
}
