package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Assigned lists records an administrator distributed to the calling agent.
func (h *TaskHandler) Assigned(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	records, err := h.taskService.Assigned(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewRecordListResponse(records))
}

// Distributed lists records the calling agent distributed. With
// ?group=recipient the records are grouped per sub-agent.
func (h *TaskHandler) Distributed(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}

	if c.Query("group") == "recipient" {
		groups, err := h.taskService.DistributedGrouped(c.UserContext(), actor)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(dto.NewGroupedRecordsResponse(groups))
	}

	records, err := h.taskService.Distributed(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewRecordListResponse(records))
}

// AllDistributed lists every record grouped by recipient, for administrators.
func (h *TaskHandler) AllDistributed(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}
	groups, err := h.taskService.AllGrouped(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewGroupedRecordsResponse(groups))
}
